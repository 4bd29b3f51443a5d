package python

import (
	"encoding/base64"
	"fmt"
)

// ScriptName is written into the working directory for every execution.
const ScriptName = "_step.py"

// BuildScript wraps user code so it runs headless with the dataset bound to df.
// The code travels base64-encoded so quotes inside it cannot break the wrapper.
func BuildScript(code, datasetPath string) string {
	encodedCode := base64.StdEncoding.EncodeToString([]byte(code))
	encodedPath := base64.StdEncoding.EncodeToString([]byte(datasetPath))

	return fmt.Sprintf(`import os
import sys
import base64
import traceback
import matplotlib
matplotlib.use('Agg')
import matplotlib.pyplot as plt
import pandas as pd
import numpy as np
try:
    import seaborn as sns
except ImportError:
    sns = None

df = pd.read_csv(base64.b64decode('%s').decode('utf-8'))

user_code = base64.b64decode('%s').decode('utf-8')

try:
    exec(compile(user_code, '<agent>', 'exec'))
except Exception as e:
    print(f"{type(e).__name__}: {e}")
    print(traceback.format_exc())
    sys.exit(1)
`, encodedPath, encodedCode)
}
