package layout

import (
	"encoding/json"
	"io"
	"os"
)

// EncodeDebugJSON 将排版结果以缩进 JSON 写入 w。
func EncodeDebugJSON(w io.Writer, res *Result) error {
	if res == nil {
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false) // 保留 <center> 等控制码原样
	return enc.Encode(res)
}

// WriteDebugJSON 将排版结果输出到文件，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeDebugJSON(file, res); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
