package constant

const (
	ModuleChat     = "ChatService"
	ModuleConsumer = "ConsumerService"
	ModuleWS       = "WebSocket"
)

// Quick queries offered to the presentation layer.
var QuickQueries = []struct {
	Label string
	Query string
}{
	{Label: "Show Age Histogram", Query: "Show me a beautiful histogram of passenger ages using seaborn."},
	{Label: "Average Ticket Fare", Query: "What was the average ticket fare? Give me a short text summary."},
	{Label: "Embarkation Ports", Query: "How many passengers embarked from each port? Draw a bar chart."},
}
