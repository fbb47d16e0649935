package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TriggerType determines how a compound journal definition is executed.
type TriggerType string

const (
	TriggerManual    TriggerType = "MANUAL"
	TriggerOneTime   TriggerType = "ONE_TIME"
	TriggerRecurring TriggerType = "RECURRING"
)

// Recurrence is the unit of the recurrence interval.
type Recurrence string

const (
	RecurDaily   Recurrence = "DAILY"
	RecurWeekly  Recurrence = "WEEKLY"
	RecurMonthly Recurrence = "MONTHLY"
	RecurYearly  Recurrence = "YEARLY"
)

// ExecutionStatus is the outcome recorded for one execution attempt.
type ExecutionStatus string

const (
	ExecutionSuccess ExecutionStatus = "SUCCESS"
	ExecutionSkipped ExecutionStatus = "SKIPPED"
	ExecutionFailed  ExecutionStatus = "FAILED"
)

// ValueKind tags a line value descriptor.
type ValueKind string

const (
	ValueFixed      ValueKind = "FIXED"
	ValueContext    ValueKind = "CONTEXT"
	ValueExpression ValueKind = "EXPRESSION"
)

// LineValue is a tagged value descriptor for a template line amount.
// Exactly one of Amount/Key/Expression is meaningful per kind.
type LineValue struct {
	Kind       ValueKind       `json:"kind" validate:"omitempty,oneof=FIXED CONTEXT EXPRESSION"`
	Amount     decimal.Decimal `json:"amount,omitempty"`     // FIXED
	Key        string          `json:"key,omitempty"`        // CONTEXT
	Expression string          `json:"expression,omitempty"` // EXPRESSION, may contain {key} placeholders
}

// FixedValue builds a constant value descriptor.
func FixedValue(amount decimal.Decimal) LineValue {
	return LineValue{Kind: ValueFixed, Amount: amount}
}

// ContextValue builds a descriptor resolved from the execution context.
func ContextValue(key string) LineValue {
	return LineValue{Kind: ValueContext, Key: key}
}

// ExpressionValue builds a descriptor evaluated as an arithmetic expression.
func ExpressionValue(text string) LineValue {
	return LineValue{Kind: ValueExpression, Expression: text}
}

// ConditionOperator compares a context value against a template constant.
type ConditionOperator string

const (
	OpEquals             ConditionOperator = "EQUALS"
	OpNotEquals          ConditionOperator = "NOT_EQUALS"
	OpContains           ConditionOperator = "CONTAINS"
	OpNotContains        ConditionOperator = "NOT_CONTAINS"
	OpExists             ConditionOperator = "EXISTS"
	OpNotExists          ConditionOperator = "NOT_EXISTS"
	OpGreaterThan        ConditionOperator = "GREATER_THAN"
	OpGreaterThanOrEqual ConditionOperator = "GREATER_THAN_OR_EQUAL"
	OpLessThan           ConditionOperator = "LESS_THAN"
	OpLessThanOrEqual    ConditionOperator = "LESS_THAN_OR_EQUAL"
)

// TemplateCondition gates an execution on a context entry.
type TemplateCondition struct {
	Key      string            `json:"key" validate:"required"`
	Operator ConditionOperator `json:"operator" validate:"required"`
	Value    string            `json:"value,omitempty"`
}

// Evaluate applies the condition against the execution context.
// String comparisons are case-insensitive; numeric comparisons require both
// sides to parse as decimals, otherwise the condition is false.
func (c TemplateCondition) Evaluate(execCtx map[string]string) bool {
	actual, exists := execCtx[c.Key]
	if !exists {
		actual, exists = execCtx[strings.ToLower(c.Key)]
	}
	switch c.Operator {
	case OpExists:
		return exists
	case OpNotExists:
		return !exists
	case OpEquals:
		return exists && strings.EqualFold(actual, c.Value)
	case OpNotEquals:
		return !exists || !strings.EqualFold(actual, c.Value)
	case OpContains:
		return exists && strings.Contains(strings.ToLower(actual), strings.ToLower(c.Value))
	case OpNotContains:
		return !exists || !strings.Contains(strings.ToLower(actual), strings.ToLower(c.Value))
	case OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual:
		if !exists {
			return false
		}
		left, err := decimal.NewFromString(strings.TrimSpace(actual))
		if err != nil {
			return false
		}
		right, err := decimal.NewFromString(strings.TrimSpace(c.Value))
		if err != nil {
			return false
		}
		switch c.Operator {
		case OpGreaterThan:
			return left.GreaterThan(right)
		case OpGreaterThanOrEqual:
			return left.GreaterThanOrEqual(right)
		case OpLessThan:
			return left.LessThan(right)
		default:
			return left.LessThanOrEqual(right)
		}
	}
	return false
}

// TemplateLine is one line definition within a compound journal template.
type TemplateLine struct {
	AccountID    string    `json:"accountID" validate:"required"`
	CostCenterID *string   `json:"costCenterID,omitempty"`
	Description  string    `json:"description,omitempty"`
	Debit        LineValue `json:"debit"`
	Credit       LineValue `json:"credit"`
}

// CompoundTemplate is the structured, reusable entry template. It must
// round-trip through JSON without loss.
type CompoundTemplate struct {
	Lines              []TemplateLine      `json:"lines" validate:"required,min=1,dive"`
	Conditions         []TemplateCondition `json:"conditions,omitempty" validate:"omitempty,dive"`
	DefaultContext     map[string]string   `json:"defaultContext,omitempty"`
	DefaultBranchID    *string             `json:"defaultBranchID,omitempty"`
	DefaultDescription string              `json:"defaultDescription,omitempty"`
	DefaultStatus      EntryStatus         `json:"defaultStatus,omitempty"`
}

// CompoundJournalDefinition is a long-lived, parameterized entry template
// executed manually or on a schedule.
type CompoundJournalDefinition struct {
	DefinitionID       string      `json:"definitionID"`
	Name               string      `json:"name"`
	TemplateJSON       string      `json:"templateJSON"`
	TriggerType        TriggerType `json:"triggerType"`
	Recurrence         Recurrence  `json:"recurrence,omitempty"`
	RecurrenceInterval int         `json:"recurrenceInterval,omitempty"`
	IsActive           bool        `json:"isActive"`
	StartDateUTC       *time.Time  `json:"startDateUTC,omitempty"`
	EndDateUTC         *time.Time  `json:"endDateUTC,omitempty"`
	LastRunUTC         *time.Time  `json:"lastRunUTC,omitempty"`
	NextRunUTC         *time.Time  `json:"nextRunUTC,omitempty"`
	AuditFields
}

// NextRunAfter computes the next due time strictly after from, or nil when the
// definition should not run again. Pure function of the definition and from.
func (d CompoundJournalDefinition) NextRunAfter(from time.Time) *time.Time {
	if !d.IsActive {
		return nil
	}
	switch d.TriggerType {
	case TriggerManual:
		return nil
	case TriggerOneTime:
		// One-shot definitions self-retire once their moment has passed.
		if d.NextRunUTC != nil && d.NextRunUTC.After(from) {
			t := *d.NextRunUTC
			return &t
		}
		return nil
	case TriggerRecurring:
		var candidate time.Time
		if d.NextRunUTC == nil {
			if d.StartDateUTC != nil {
				candidate = *d.StartDateUTC
			} else {
				candidate = from
			}
			if !candidate.After(from) {
				candidate = d.addInterval(candidate)
			}
		} else {
			candidate = *d.NextRunUTC
			for !candidate.After(from) {
				candidate = d.addInterval(candidate)
			}
		}
		if d.EndDateUTC != nil && candidate.After(*d.EndDateUTC) {
			return nil
		}
		return &candidate
	}
	return nil
}

func (d CompoundJournalDefinition) addInterval(t time.Time) time.Time {
	step := d.RecurrenceInterval
	if step < 1 {
		step = 1
	}
	switch d.Recurrence {
	case RecurDaily:
		return t.AddDate(0, 0, step)
	case RecurWeekly:
		return t.AddDate(0, 0, 7*step)
	case RecurMonthly:
		return t.AddDate(0, step, 0)
	case RecurYearly:
		return t.AddDate(step, 0, 0)
	}
	// Unknown recurrence behaves as daily so a misconfigured definition
	// still advances instead of spinning.
	return t.AddDate(0, 0, step)
}

// CompoundExecutionLog is an append-only audit row per execution attempt.
type CompoundExecutionLog struct {
	LogID          string          `json:"logID"`
	DefinitionID   string          `json:"definitionID"`
	ExecutedAt     time.Time       `json:"executedAt"`
	IsAutomatic    bool            `json:"isAutomatic"`
	JournalEntryID *string         `json:"journalEntryID,omitempty"`
	Status         ExecutionStatus `json:"status"`
	Message        string          `json:"message,omitempty"`
	ContextJSON    string          `json:"contextJSON,omitempty"` // Serialized context snapshot
}
