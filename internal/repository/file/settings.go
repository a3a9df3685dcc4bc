package file

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type document struct {
	UseTER         bool              `mapstructure:"use_ter"`
	Method         string            `mapstructure:"calculation_method"`
	PTKPTable      map[string]string `mapstructure:"ptkp_table"`
	PTKPTERMapping map[string]string `mapstructure:"ptkp_ter_mapping"`
	TERBrackets    []terBracket      `mapstructure:"ter_brackets"`
	TaxBrackets    []taxBracket      `mapstructure:"tax_brackets"`
	BPJSRates      bpjsRates         `mapstructure:"bpjs_rates"`
	SalaryCaps     salaryCaps        `mapstructure:"salary_caps"`
}

type terBracket struct {
	Category         string `mapstructure:"category"`
	IncomeFrom       string `mapstructure:"income_from"`
	IncomeTo         string `mapstructure:"income_to"`
	Rate             string `mapstructure:"rate"`
	IsHighestBracket bool   `mapstructure:"is_highest_bracket"`
}

type taxBracket struct {
	IncomeFrom string `mapstructure:"income_from"`
	IncomeTo   string `mapstructure:"income_to"`
	Rate       string `mapstructure:"rate"`
}

type bpjsRates struct {
	HealthEmployee string `mapstructure:"health_employee"`
	HealthEmployer string `mapstructure:"health_employer"`
	JHTEmployee    string `mapstructure:"jht_employee"`
	JHTEmployer    string `mapstructure:"jht_employer"`
	JPEmployee     string `mapstructure:"jp_employee"`
	JPEmployer     string `mapstructure:"jp_employer"`
	JKKEmployer    string `mapstructure:"jkk_employer"`
	JKMEmployer    string `mapstructure:"jkm_employer"`
}

type salaryCaps struct {
	Health  string `mapstructure:"health"`
	Pension string `mapstructure:"pension"`
}

// SettingsRepository serves the tax settings document from a YAML or JSON file.
type SettingsRepository struct {
	v    *viper.Viper
	path string

	mu       sync.RWMutex
	settings tax.Settings
	err      error
}

func NewSettingsRepository(path string) (*SettingsRepository, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read tax settings file %s: %w", path, err)
	}

	r := &SettingsRepository{v: v, path: path}
	r.reload()
	return r, nil
}

func (r *SettingsRepository) GetSettings(ctx context.Context) (tax.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings, r.err
}

// Watch re-reads the file whenever it changes and calls onChange afterwards.
func (r *SettingsRepository) Watch(onChange func()) {
	r.v.OnConfigChange(func(e fsnotify.Event) {
		slog.Info("Tax settings file changed", "path", e.Name, "op", e.Op.String())
		r.reload()
		if onChange != nil {
			onChange()
		}
	})
	r.v.WatchConfig()
}

func (r *SettingsRepository) reload() {
	settings, err := r.decode()
	if err == nil {
		if verr := settings.Validate(); verr != nil {
			slog.Warn("Tax settings file failed validation", "path", r.path, "error", verr)
		}
	}

	r.mu.Lock()
	r.settings, r.err = settings, err
	r.mu.Unlock()
}

func (r *SettingsRepository) decode() (tax.Settings, error) {
	if !r.v.IsSet("ptkp_table") && !r.v.IsSet("tax_brackets") && !r.v.IsSet("ter_brackets") {
		return tax.Settings{}, tax.ErrSettingsNotFound
	}

	var doc document
	if err := r.v.Unmarshal(&doc); err != nil {
		return tax.Settings{}, fmt.Errorf("%w: %v", tax.ErrInvalidSettings, err)
	}

	p := &parser{}
	s := tax.Settings{
		UseTER:         doc.UseTER,
		Method:         tax.CalculationMethod(doc.Method),
		PTKPTable:      make(map[string]decimal.Decimal, len(doc.PTKPTable)),
		PTKPTERMapping: make(map[string]tax.TERCategory, len(doc.PTKPTERMapping)),
	}
	// viper lower-cases map keys
	for status, amount := range doc.PTKPTable {
		s.PTKPTable[strings.ToUpper(status)] = p.decimal("ptkp_table."+status, amount)
	}
	for status, category := range doc.PTKPTERMapping {
		s.PTKPTERMapping[strings.ToUpper(status)] = tax.TERCategory(strings.ToUpper(category))
	}
	for i, b := range doc.TERBrackets {
		field := fmt.Sprintf("ter_brackets[%d]", i)
		s.TERBrackets = append(s.TERBrackets, tax.TERBracket{
			Category:         tax.TERCategory(strings.ToUpper(b.Category)),
			IncomeFrom:       p.decimal(field+".income_from", b.IncomeFrom),
			IncomeTo:         p.decimal(field+".income_to", b.IncomeTo),
			Rate:             p.decimal(field+".rate", b.Rate),
			IsHighestBracket: b.IsHighestBracket,
		})
	}
	for i, b := range doc.TaxBrackets {
		field := fmt.Sprintf("tax_brackets[%d]", i)
		s.TaxBrackets = append(s.TaxBrackets, tax.TaxBracket{
			IncomeFrom: p.decimal(field+".income_from", b.IncomeFrom),
			IncomeTo:   p.decimal(field+".income_to", b.IncomeTo),
			Rate:       p.decimal(field+".rate", b.Rate),
		})
	}
	s.BPJSRates = tax.BPJSRates{
		HealthEmployee: p.decimal("bpjs_rates.health_employee", doc.BPJSRates.HealthEmployee),
		HealthEmployer: p.decimal("bpjs_rates.health_employer", doc.BPJSRates.HealthEmployer),
		JHTEmployee:    p.decimal("bpjs_rates.jht_employee", doc.BPJSRates.JHTEmployee),
		JHTEmployer:    p.decimal("bpjs_rates.jht_employer", doc.BPJSRates.JHTEmployer),
		JPEmployee:     p.decimal("bpjs_rates.jp_employee", doc.BPJSRates.JPEmployee),
		JPEmployer:     p.decimal("bpjs_rates.jp_employer", doc.BPJSRates.JPEmployer),
		JKKEmployer:    p.decimal("bpjs_rates.jkk_employer", doc.BPJSRates.JKKEmployer),
		JKMEmployer:    p.decimal("bpjs_rates.jkm_employer", doc.BPJSRates.JKMEmployer),
	}
	s.SalaryCaps = tax.SalaryCaps{
		Health:  p.decimal("salary_caps.health", doc.SalaryCaps.Health),
		Pension: p.decimal("salary_caps.pension", doc.SalaryCaps.Pension),
	}

	if p.err != nil {
		return tax.Settings{}, p.err
	}
	return s, nil
}

// parser keeps the first decimal parse failure.
type parser struct {
	err error
}

func (p *parser) decimal(field, value string) decimal.Decimal {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%w: %s: %v", tax.ErrInvalidSettings, field, err)
	}
	return d
}
