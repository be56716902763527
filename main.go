package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/ByLCY/autowrap/dsl"
	"github.com/ByLCY/autowrap/layout"
	"github.com/ByLCY/autowrap/renderer"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("错误: %v", err))
		os.Exit(1)
	}
}

// run 串联脚本解析、排版与预览渲染；outputPath 为空时不渲染。
func run(inputPath, outputPath, debugPath string, data any, r renderer.Renderer, opts layout.BuildOptions) (*layout.Result, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("无法打开脚本文件 %s: %w", inputPath, err)
	}
	defer file.Close()

	script, err := dsl.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("解析脚本失败: %w", err)
	}

	result, err := layout.Build(script, data, opts)
	if err != nil {
		return nil, fmt.Errorf("排版失败: %w", err)
	}

	if debugPath != "" {
		if err := writeDebug(result, debugPath); err != nil {
			return nil, err
		}
	}

	if outputPath == "" {
		return result, nil
	}
	if r == nil {
		return nil, fmt.Errorf("renderer 不能为空")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := r.Render(result)
	if err != nil {
		return nil, fmt.Errorf("渲染预览失败: %w", err)
	}
	if err := os.WriteFile(outputPath, pdfBytes, 0o644); err != nil {
		return nil, fmt.Errorf("写入预览文件失败: %w", err)
	}
	return result, nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

// loadData 解析 --data 参数：以 @ 开头时读取文件，否则按 JSON 文本处理。
func loadData(raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	payload := []byte(raw)
	if raw[0] == '@' {
		b, err := os.ReadFile(raw[1:])
		if err != nil {
			return nil, fmt.Errorf("读取数据文件失败: %w", err)
		}
		payload = b
	}
	var data any
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("解析 data JSON 失败: %w", err)
	}
	return data, nil
}
