package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/autowrap/binding"
	"github.com/ByLCY/autowrap/config"
	"github.com/ByLCY/autowrap/dsl"
	"github.com/ByLCY/autowrap/wrap"
)

// DefaultLineHeight 是消息窗口默认行高（px）。
const DefaultLineHeight = 36.0

// settings 汇总脚本级别的策略与窗口度量。
type settings struct {
	policy     wrap.Policy
	window     wrap.Window
	perChar    float64
	wideCells  bool
	lineHeight float64
	fonts      map[string]FontResource
	font       FontResource
}

// Build 根据脚本 AST 与绑定数据生成每条消息的折行结果。
func Build(script *dsl.Script, data any, opts BuildOptions) (*Result, error) {
	if script == nil {
		return nil, fmt.Errorf("脚本为空")
	}
	defaults := opts.Defaults
	if defaults == (config.Config{}) {
		defaults = config.Default()
	}

	set, err := collectSettings(script, defaults)
	if err != nil {
		return nil, err
	}

	var messages []*dsl.MessageSection
	for _, section := range script.Sections {
		if section.Message != nil {
			messages = append(messages, section.Message)
		}
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("脚本 %s 中缺少 message 段落", script.Name)
	}

	res := &Result{
		Name:   script.Name,
		Policy: set.policy,
		Window: set.window,
		Font:   set.font,
		Meta:   collectMeta(script),
	}
	producer := binding.Producer(data)
	for _, msg := range messages {
		m, err := buildMessage(msg, set, producer, opts)
		if err != nil {
			return nil, err
		}
		res.Messages = append(res.Messages, m)
	}
	if opts.Logger != nil {
		opts.Logger.Info("script laid out", "script", script.Name, "messages", len(res.Messages))
	}
	return res, nil
}

func collectSettings(script *dsl.Script, defaults config.Config) (settings, error) {
	set := settings{
		policy:     defaults.Policy,
		window:     defaults.Window,
		perChar:    defaults.Estimate.PerChar,
		wideCells:  defaults.Estimate.WideCells,
		lineHeight: DefaultLineHeight,
		fonts:      map[string]FontResource{},
	}
	for _, section := range script.Sections {
		switch {
		case section.Policy != nil:
			if err := applyPolicy(&set, section.Policy.Block); err != nil {
				return set, err
			}
		case section.Window != nil:
			if err := applyWindow(&set, section.Window.Block); err != nil {
				return set, err
			}
		case section.Resources != nil:
			collectFonts(set.fonts, section.Resources.Block)
		}
	}

	set.font = FontResource{Name: "Body", Src: defaults.Font.Src, Size: defaults.Font.Size}
	if f, ok := set.fonts["Body"]; ok {
		set.font = f
	} else {
		for _, f := range set.fonts {
			set.font = f
			break
		}
	}
	if set.font.Size <= 0 {
		set.font.Size = defaults.Font.Size
	}
	return set, nil
}

func applyPolicy(set *settings, block *dsl.Block) error {
	for _, a := range assignments(block) {
		value := a.Value.Text()
		var err error
		switch strings.ToLower(a.Key) {
		case "override-width", "width":
			set.policy.OverrideWidth, err = parseWidth(value)
		case "merge-with-next-line", "merge":
			set.policy.MergeAcrossLines, err = parseBool(value)
		case "chain-wrapping", "chain":
			set.policy.ChainReflow, err = parseBool(value)
		case "preserve-empty-lines", "keep-blank":
			set.policy.KeepBlankLines, err = parseBool(value)
		case "per-char-estimate":
			set.perChar, err = parseWidth(value)
		case "wide-cells":
			set.wideCells, err = parseBool(value)
		default:
			err = fmt.Errorf("未知的 policy 字段")
		}
		if err != nil {
			return fmt.Errorf("policy.%s: %w", a.Key, err)
		}
	}
	return nil
}

func applyWindow(set *settings, block *dsl.Block) error {
	for _, a := range assignments(block) {
		value := a.Value.Text()
		var err error
		switch strings.ToLower(a.Key) {
		case "width":
			set.window.ContainerWidth, err = parseWidth(value)
		case "padding":
			set.window.Padding, err = parseWidth(value)
		case "face":
			set.window.Face, err = parseBool(value)
		case "face-width":
			set.window.FaceWidth, err = parseWidth(value)
		case "face-margin":
			set.window.FaceMargin, err = parseWidth(value)
		case "ratio":
			set.window.SafetyRatio, err = strconv.ParseFloat(value, 64)
			if err == nil && (set.window.SafetyRatio <= 0 || set.window.SafetyRatio > 1) {
				err = fmt.Errorf("必须在 (0, 1] 之间")
			}
		case "min-width":
			set.window.MinWidth, err = parseWidth(value)
		case "line-height":
			set.lineHeight, err = parseWidth(value)
		default:
			err = fmt.Errorf("未知的 window 字段")
		}
		if err != nil {
			return fmt.Errorf("window.%s: %w", a.Key, err)
		}
	}
	return nil
}

func collectFonts(fonts map[string]FontResource, block *dsl.Block) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		cmd := stmt.Command
		if cmd == nil || cmd.Name != "font" || len(cmd.Args) == 0 {
			continue
		}
		font := FontResource{Name: cmd.Args[0].Value}
		for _, a := range assignments(cmd.Block) {
			switch a.Key {
			case "src":
				font.Src = a.Value.Text()
			case "style":
				font.Style = a.Value.Text()
			case "size":
				font.Size = ParseLength(a.Value.Text()).ToPX()
			}
		}
		fonts[font.Name] = font
	}
}

func collectMeta(script *dsl.Script) ScriptMeta {
	meta := ScriptMeta{Creator: "autowrap"}
	for _, section := range script.Sections {
		if section.Meta == nil {
			continue
		}
		for _, a := range assignments(section.Meta.Block) {
			switch strings.ToLower(a.Key) {
			case "title":
				meta.Title = a.Value.Text()
			case "author":
				meta.Author = a.Value.Text()
			case "subject":
				meta.Subject = a.Value.Text()
			case "creator":
				meta.Creator = a.Value.Text()
			case "keywords":
				meta.Keywords = valueToStringSlice(a.Value)
			}
		}
	}
	return meta
}

func buildMessage(msg *dsl.MessageSection, set settings, producer wrap.RawTextFunc, opts BuildOptions) (Message, error) {
	policy, window, font := set.policy, set.window, set.font
	for key, value := range parseArgs(msg.Args) {
		var err error
		switch strings.ToLower(key) {
		case "face":
			window.Face, err = parseBool(value)
		case "merge":
			policy.MergeAcrossLines, err = parseBool(value)
		case "chain":
			policy.ChainReflow, err = parseBool(value)
		case "keep-blank":
			policy.KeepBlankLines, err = parseBool(value)
		case "width":
			policy.OverrideWidth, err = parseWidth(value)
		case "font":
			f, ok := set.fonts[value]
			if !ok {
				err = fmt.Errorf("字体 %s 未定义", value)
			}
			font = f
			if font.Size <= 0 {
				font.Size = set.font.Size
			}
		default:
			err = fmt.Errorf("未知参数")
		}
		if err != nil {
			return Message{}, fmt.Errorf("message %s 参数 %s: %w", msg.Name, key, err)
		}
	}

	var measure wrap.MeasureFunc
	if opts.Measurer != nil {
		measure = func(text string) (float64, error) { return opts.Measurer.Measure(text, font) }
	}
	oracleOpts := []wrap.OracleOption{wrap.WithEstimate(set.perChar), wrap.WithWideCells(set.wideCells)}
	if opts.Logger != nil {
		oracleOpts = append(oracleOpts, wrap.WithLogger(opts.Logger.With("message", msg.Name)))
	}
	wrapper := wrap.New(policy, window, wrap.NewOracle(measure, oracleOpts...))

	logical := msg.Lines()
	source := producer(strings.Join(logical, "\n"))
	text := wrapper.Apply(source)

	out := Message{
		Name:           msg.Name,
		Face:           window.Face,
		Font:           font,
		Policy:         policy,
		AvailableWidth: wrapper.Width(),
		LineHeight:     set.lineHeight,
		Source:         source,
		Text:           text,
	}
	blank := 0
	for _, raw := range strings.Split(text, "\n") {
		code, content := wrap.ExtractControlCode(raw)
		width := wrapper.Oracle().Measure(content)
		if strings.TrimSpace(content) == "" {
			blank++
		}
		out.Lines = append(out.Lines, TextLine{
			Content:  content,
			Raw:      raw,
			Width:    width,
			Align:    wrap.Alignment(code),
			Overflow: width > out.AvailableWidth && len(strings.Fields(content)) == 1,
		})
	}
	out.Height = float64(len(out.Lines)) * set.lineHeight
	if opts.Debug.LineStats {
		out.Debug = &MessageDebug{
			LogicalLines:  len(logical),
			PhysicalLines: len(out.Lines),
			BlankLines:    blank,
		}
	}
	return out, nil
}

func assignments(block *dsl.Block) []*dsl.Assignment {
	if block == nil {
		return nil
	}
	var out []*dsl.Assignment
	for _, stmt := range block.Statements {
		if stmt.Assignment != nil {
			out = append(out, stmt.Assignment)
		}
	}
	return out
}

// parseArgs 把 `face on chain off` 形式的参数解析为键值对，落单的最后一个键视为 on。
func parseArgs(args []*dsl.Lexeme) map[string]string {
	result := map[string]string{}
	for cursor := 0; cursor < len(args); cursor += 2 {
		key := args[cursor].Value
		if cursor+1 >= len(args) {
			result[key] = "on"
			break
		}
		result[key] = args[cursor+1].Value
	}
	return result
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "on", "yes", "1":
		return true, nil
	case "false", "off", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("无法解析布尔值 %q", value)
	}
}

func parseWidth(value string) (float64, error) {
	l, err := ParseLengthStrict(value)
	if err != nil {
		return 0, err
	}
	if l.Value < 0 {
		return 0, fmt.Errorf("长度不能为负数: %q", value)
	}
	return l.ToPX(), nil
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := item.Text(); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := val.Text(); s != "" {
		return []string{s}
	}
	return nil
}
