package dto

type DatasetPreviewResponse struct {
	Columns []string            `json:"columns"`
	Rows    int                 `json:"rows"`
	Preview []map[string]string `json:"preview"`
}
