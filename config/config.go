package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/autowrap/wrap"
)

// ErrInvalid 表示配置值不合法。
var ErrInvalid = errors.New("invalid config")

// Config 是启动时加载一次的进程级配置。
type Config struct {
	Policy   wrap.Policy `yaml:"policy"`
	Window   wrap.Window `yaml:"window"`
	Estimate Estimate    `yaml:"estimate"`
	Font     Font        `yaml:"font"`
}

// Estimate 配置测量失败时的估算。
type Estimate struct {
	PerChar   float64 `yaml:"per-char"`
	WideCells bool    `yaml:"wide-cells"` // 全角/宽字符按 2 个字符估算
}

// Font 描述测量所用字体，size 单位为 px。
type Font struct {
	Src  string  `yaml:"src"`
	Size float64 `yaml:"size"`
}

// Default 返回默认配置。
func Default() Config {
	return Config{
		Policy:   wrap.DefaultPolicy(),
		Window:   wrap.DefaultWindow(),
		Estimate: Estimate{PerChar: wrap.DefaultPerCharEstimate},
		Font:     Font{Src: "builtin:goregular", Size: 28},
	}
}

// Load 读取 YAML 配置文件，未出现的字段保持默认值。
func Load(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("无法打开配置文件 %s: %w", path, err)
	}
	defer file.Close()

	cfg, err := Decode(file)
	if err != nil {
		return Config{}, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	return cfg, nil
}

// Decode 从 r 解码配置并校验，未知字段视为错误。
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 检查数值范围。
func (c Config) Validate() error {
	switch {
	case c.Policy.OverrideWidth < 0:
		return fmt.Errorf("%w: policy.override-width 不能为负数", ErrInvalid)
	case c.Window.ContainerWidth < 0:
		return fmt.Errorf("%w: window.width 不能为负数", ErrInvalid)
	case c.Window.Padding < 0:
		return fmt.Errorf("%w: window.padding 不能为负数", ErrInvalid)
	case c.Window.FaceWidth < 0 || c.Window.FaceMargin < 0:
		return fmt.Errorf("%w: 头像尺寸不能为负数", ErrInvalid)
	case c.Window.SafetyRatio <= 0 || c.Window.SafetyRatio > 1:
		return fmt.Errorf("%w: window.ratio 必须在 (0, 1] 之间", ErrInvalid)
	case c.Window.MinWidth < 0:
		return fmt.Errorf("%w: window.min-width 不能为负数", ErrInvalid)
	case c.Estimate.PerChar <= 0:
		return fmt.Errorf("%w: estimate.per-char 必须大于 0", ErrInvalid)
	case c.Font.Size < 0:
		return fmt.Errorf("%w: font.size 不能为负数", ErrInvalid)
	}
	return nil
}

// Wrapper 按配置构造折行器，measure 可以为 nil。
func (c Config) Wrapper(measure wrap.MeasureFunc, opts ...wrap.OracleOption) *wrap.Wrapper {
	base := []wrap.OracleOption{wrap.WithEstimate(c.Estimate.PerChar), wrap.WithWideCells(c.Estimate.WideCells)}
	opts = append(base, opts...)
	return wrap.New(c.Policy, c.Window, wrap.NewOracle(measure, opts...))
}
