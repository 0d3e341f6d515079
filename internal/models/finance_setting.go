package models

import "time"

// Finance setting scopes. Settings are read-mostly rows folded into an
// immutable snapshot by the settings provider.
const (
	FinanceScopeCommission = "commission"
	FinanceScopeTax        = "tax"
	FinanceScopeExchange   = "exchange"
	FinanceScopeSla        = "sla"
	FinanceScopePlatform   = "platform"
)

// FinanceSetting is a single configuration row, keyed within a scope.
// Commission keys: "{type}:{demandLevel}", "{type}", "{demandLevel}" or
// "default". Tax and exchange keys are currency codes. SLA keys are booking
// types or "default" (minutes).
type FinanceSetting struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Scope string  `gorm:"size:20;index:idx_finance_setting,unique" json:"scope"`
	Key   string  `gorm:"size:40;index:idx_finance_setting,unique" json:"key"`
	Value float64 `json:"value"`

	// Text-valued settings (platform default currency). Value is ignored
	// when TextValue is set.
	TextValue string `gorm:"size:40" json:"text_value,omitempty"`

	// Enabled carries no column default: a zero value must persist as
	// disabled, which gorm's default tag would silently rewrite on insert.
	Enabled bool `json:"enabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
