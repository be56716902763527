package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ByLCY/autowrap/binding"
	"github.com/ByLCY/autowrap/config"
	"github.com/ByLCY/autowrap/layout"
	"github.com/ByLCY/autowrap/logging"
	canvasrenderer "github.com/ByLCY/autowrap/renderer/canvas"
	"github.com/ByLCY/autowrap/wrap"
)

// app 保存启动时加载一次的配置与 logger。
type app struct {
	configPath string
	logLevel   string
	logJSON    bool

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "autowrap",
		Short: "Word-wrap game message text against a pixel width",
		Long: `autowrap greedily wraps message text at spaces so every line fits the
message window, optionally merging overflow into the following line.

Examples:
  autowrap wrap --width 480 dialogue.txt       Wrap a text file
  autowrap script chapter1.msg --debug out.json  Lay out a message script
  autowrap preview chapter1.msg -o preview.pdf  Render window previews
  autowrap width --face                         Show the derived text width`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to $"+logging.EnvLevel)
	root.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "emit logs as JSON")

	root.AddCommand(a.wrapCmd(), a.scriptCmd(), a.previewCmd(), a.widthCmd())
	return root
}

func (a *app) init(logOut io.Writer) error {
	level := logging.LevelFromEnv()
	if a.logLevel != "" {
		level = logging.ParseLevel(a.logLevel, level)
	}
	a.logger = logging.New(logOut, level, a.logJSON)

	a.cfg = config.Default()
	if a.configPath == "" {
		return nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger.Info("config loaded", "path", a.configPath, "policy", cfg.Policy, "window", cfg.Window)
	return nil
}

// policyFlags 绑定可覆盖配置的命令行参数。
type policyFlags struct {
	width     float64
	merge     bool
	chain     bool
	keepBlank bool
	face      bool
	container float64
	font      string
	fontSize  float64
	estimate  bool
}

func (f *policyFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&f.width, "width", "w", 0, "override text width in px (0 = derive from window)")
	cmd.Flags().BoolVar(&f.merge, "merge", true, "merge overflow with the next line (only takes effect together with --chain)")
	cmd.Flags().BoolVar(&f.chain, "chain", true, "keep reflowing merged overflow into following lines")
	cmd.Flags().BoolVar(&f.keepBlank, "keep-blank", true, "preserve empty lines")
	cmd.Flags().BoolVar(&f.face, "face", false, "reserve space for a face graphic")
	cmd.Flags().Float64Var(&f.container, "window-width", 0, "message window width in px")
	cmd.Flags().StringVar(&f.font, "font", "", "font src for measurement (builtin:<name> or path)")
	cmd.Flags().Float64Var(&f.fontSize, "font-size", 0, "font size in px")
	cmd.Flags().BoolVar(&f.estimate, "estimate", false, "skip font measurement and use the per-character estimate")
}

// apply 只覆盖用户显式设置的字段。
func (f *policyFlags) apply(cmd *cobra.Command, cfg config.Config) config.Config {
	changed := cmd.Flags().Changed
	if changed("width") {
		cfg.Policy.OverrideWidth = f.width
	}
	if changed("merge") {
		cfg.Policy.MergeAcrossLines = f.merge
	}
	if changed("chain") {
		cfg.Policy.ChainReflow = f.chain
	}
	if changed("keep-blank") {
		cfg.Policy.KeepBlankLines = f.keepBlank
	}
	if changed("face") {
		cfg.Window.Face = f.face
	}
	if changed("window-width") {
		cfg.Window.ContainerWidth = f.container
	}
	if changed("font") {
		cfg.Font.Src = f.font
	}
	if changed("font-size") {
		cfg.Font.Size = f.fontSize
	}
	return cfg
}

func (a *app) measurer(cfg config.Config, estimateOnly bool) wrap.MeasureFunc {
	if estimateOnly {
		return nil
	}
	r := canvasrenderer.NewRenderer(".")
	return r.MeasureFunc(layout.FontResource{Name: "Body", Src: cfg.Font.Src, Size: cfg.Font.Size})
}

func (a *app) wrapCmd() *cobra.Command {
	var (
		flags     policyFlags
		text      string
		dataJSON  string
		showWidth bool
	)
	cmd := &cobra.Command{
		Use:   "wrap [file]",
		Short: "Wrap message text read from a file, --text or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := flags.apply(cmd, a.cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			input, err := readInput(cmd.InOrStdin(), text, args)
			if err != nil {
				return err
			}
			data, err := loadData(dataJSON)
			if err != nil {
				return err
			}

			w := cfg.Wrapper(a.measurer(cfg, flags.estimate), wrap.WithLogger(a.logger))
			out := w.Process(input, binding.Producer(data))
			if !showWidth {
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}
			printWidths(cmd.OutOrStdout(), w, strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n"))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&text, "text", "t", "", "message text (\\n separates lines)")
	cmd.Flags().StringVar(&dataJSON, "data", "", "JSON bound to ${...}, \\V[n] and \\N[n]; prefix with @ to read a file")
	cmd.Flags().BoolVar(&showWidth, "show-width", false, "print the measured width of each line")
	return cmd
}

func (a *app) scriptCmd() *cobra.Command {
	var (
		dataJSON  string
		debugPath string
		estimate  bool
	)
	cmd := &cobra.Command{
		Use:   "script <file.msg>",
		Short: "Lay out every message in a script and print the wrapped text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadData(dataJSON)
			if err != nil {
				return err
			}
			opts := a.buildOptions(estimate, debugPath != "")
			result, err := run(args[0], "", debugPath, data, nil, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			heading := color.New(color.Bold, color.FgCyan)
			for _, msg := range result.Messages {
				heading.Fprintf(out, "== %s (%.0fpx)\n", msg.Name, msg.AvailableWidth)
				fmt.Fprintln(out, msg.Text)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dataJSON, "data", "", "JSON bound to the script; prefix with @ to read a file")
	cmd.Flags().StringVar(&debugPath, "debug", "", "write layout debug JSON to this path")
	cmd.Flags().BoolVar(&estimate, "estimate", false, "skip font measurement and use the per-character estimate")
	return cmd
}

func (a *app) previewCmd() *cobra.Command {
	var (
		dataJSON  string
		debugPath string
		output    string
	)
	cmd := &cobra.Command{
		Use:   "preview <file.msg>",
		Short: "Render message window previews to PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadData(dataJSON)
			if err != nil {
				return err
			}
			r := canvasrenderer.NewRenderer(filepath.Dir(args[0]))
			opts := a.buildOptions(false, debugPath != "")
			opts.Measurer = r
			if _, err := run(args[0], output, debugPath, data, r, opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已生成预览：%s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataJSON, "data", "", "JSON bound to the script; prefix with @ to read a file")
	cmd.Flags().StringVar(&debugPath, "debug", "", "write layout debug JSON to this path")
	cmd.Flags().StringVarP(&output, "out", "o", "output/preview.pdf", "PDF output path")
	return cmd
}

func (a *app) widthCmd() *cobra.Command {
	var flags policyFlags
	cmd := &cobra.Command{
		Use:   "width [text...]",
		Short: "Print the derived available width and optionally measure text",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := flags.apply(cmd, a.cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			w := cfg.Wrapper(a.measurer(cfg, flags.estimate), wrap.WithLogger(a.logger))
			fmt.Fprintf(cmd.OutOrStdout(), "available width: %.0fpx (face reservation %.0fpx)\n", w.Width(), cfg.Window.FaceReservation())
			if len(args) > 0 {
				printWidths(cmd.OutOrStdout(), w, args)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) buildOptions(estimate, debug bool) layout.BuildOptions {
	opts := layout.BuildOptions{
		Defaults: a.cfg,
		Logger:   a.logger,
		Debug:    layout.DebugOptions{LineStats: debug},
	}
	if !estimate {
		opts.Measurer = canvasrenderer.NewRenderer(".")
	}
	return opts
}

// printWidths 输出每行宽度；多词超宽标红，单词超宽标黄。
func printWidths(out io.Writer, w *wrap.Wrapper, lines []string) {
	over := color.New(color.FgRed)
	word := color.New(color.FgYellow)
	for _, line := range lines {
		_, content := wrap.ExtractControlCode(line)
		width := w.Oracle().Measure(content)
		label := fmt.Sprintf("%7.1f  %s", width, line)
		switch {
		case width <= w.Width():
			fmt.Fprintln(out, label)
		case len(strings.Fields(content)) > 1:
			over.Fprintln(out, label)
		default:
			word.Fprintln(out, label)
		}
	}
}

func readInput(stdin io.Reader, text string, args []string) (string, error) {
	switch {
	case text != "":
		return strings.ReplaceAll(text, `\n`, "\n"), nil
	case len(args) == 1 && args[0] != "-":
		b, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("读取文本文件失败: %w", err)
		}
		return trimFinalNewline(string(b)), nil
	default:
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("读取标准输入失败: %w", err)
		}
		return trimFinalNewline(string(b)), nil
	}
}

// trimFinalNewline 去掉文件末尾的单个换行符，其余空行保留。
func trimFinalNewline(s string) string {
	return strings.TrimSuffix(strings.TrimSuffix(s, "\n"), "\r")
}
