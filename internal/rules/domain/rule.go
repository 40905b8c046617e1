package rules

import "strings"

// LogicalOperator links a condition to the next one.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "AND"
	LogicalOr  LogicalOperator = "OR"
)

// Valid returns true when operator is supported.
func (o LogicalOperator) Valid() bool {
	return o == LogicalAnd || o == LogicalOr
}

// SearchType selects the rule search key.
type SearchType string

const (
	SearchByTags   SearchType = "tags"
	SearchByRuleID SearchType = "ruleId"
)

// Valid returns true when search type is supported.
func (s SearchType) Valid() bool {
	return s == SearchByTags || s == SearchByRuleID
}

// Condition is one clause of a rule.
type Condition struct {
	SensorType      string           `json:"sensorType"`
	SensorID        string           `json:"sensorId"`
	Operator        string           `json:"operator"`
	Value           string           `json:"value"`
	Function        string           `json:"function"`
	ConditionOrder  int              `json:"condition_order,omitempty"`
	LogicalOperator *LogicalOperator `json:"logicalOperator"`
}

// Rule is the console shape of a rule.
type Rule struct {
	RuleID          int64       `json:"Rule_ID"`
	RuleName        string      `json:"Rule_Name"`
	RTUID           IDList      `json:"RTU_ID"`
	RTUName         string      `json:"RTU_Name"`
	Description     string      `json:"description"`
	Status          string      `json:"Status"`
	Priority        string      `json:"Priority"`
	Tags            []string    `json:"Tags"`
	ActivationDelay int         `json:"activationDelay"`
	LastUpdated     string      `json:"Last_Updated"`
	Conditions      []Condition `json:"Condition"`
}

// Validate checks rule invariants before a write.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.RuleName) == "" {
		return ErrEmptyName
	}
	if len(r.RTUID) == 0 {
		return ErrInvalidRTU
	}
	for _, c := range r.Conditions {
		if c.LogicalOperator != nil && !c.LogicalOperator.Valid() {
			return ErrInvalidCondition
		}
	}
	return nil
}

// APICondition is the backend condition shape.
type APICondition struct {
	SensorType      string           `json:"sensorType"`
	SensorID        FlexString       `json:"sensorId"`
	Operator        string           `json:"operator"`
	Value           FlexString       `json:"value"`
	Function        string           `json:"function"`
	ConditionOrder  int              `json:"conditionOrder,omitempty"`
	LogicalOperator *LogicalOperator `json:"logicalOperator"`
}

// APIRule is the backend rule shape.
type APIRule struct {
	ID              int64          `json:"id,omitempty"`
	RuleID          int64          `json:"ruleId,omitempty"`
	RuleName        string         `json:"ruleName"`
	RTUID           IDList         `json:"rtuId"`
	RTUIDs          IDList         `json:"rtuIds,omitempty"`
	RTUName         string         `json:"rtuName"`
	Description     string         `json:"description"`
	Status          string         `json:"status"`
	Priority        string         `json:"priority"`
	Tags            TagList        `json:"tags"`
	ActivationDelay int            `json:"activationDelay"`
	LastUpdated     string         `json:"lastUpdated"`
	Conditions      []APICondition `json:"conditions"`
}

// FromAPI normalizes a backend rule into the console shape.
func FromAPI(api APIRule) Rule {
	id := api.ID
	if id == 0 {
		id = api.RuleID
	}
	tags := []string(api.Tags)
	if tags == nil {
		tags = []string{}
	}
	conditions := make([]Condition, 0, len(api.Conditions))
	for _, c := range api.Conditions {
		conditions = append(conditions, Condition{
			SensorType:      c.SensorType,
			SensorID:        string(c.SensorID),
			Operator:        c.Operator,
			Value:           string(c.Value),
			Function:        c.Function,
			ConditionOrder:  c.ConditionOrder,
			LogicalOperator: c.LogicalOperator,
		})
	}
	return Rule{
		RuleID:          id,
		RuleName:        api.RuleName,
		RTUID:           api.RTUID.Merge(api.RTUIDs),
		RTUName:         api.RTUName,
		Description:     api.Description,
		Status:          api.Status,
		Priority:        api.Priority,
		Tags:            tags,
		ActivationDelay: api.ActivationDelay,
		LastUpdated:     api.LastUpdated,
		Conditions:      conditions,
	}
}

// FromAPIList normalizes a list; nil input yields an empty list.
func FromAPIList(list []APIRule) []Rule {
	out := make([]Rule, 0, len(list))
	for _, item := range list {
		out = append(out, FromAPI(item))
	}
	return out
}

// WriteCondition is the backend condition shape on create/update.
type WriteCondition struct {
	SensorType      string           `json:"sensorType"`
	SensorID        string           `json:"sensorId"`
	Operator        string           `json:"operator"`
	Value           string           `json:"value"`
	Function        string           `json:"function"`
	ConditionOrder  int              `json:"conditionOrder"`
	LogicalOperator *LogicalOperator `json:"logicalOperator"`
}

// WriteRequest is the backend create/update payload.
type WriteRequest struct {
	RuleID          int64            `json:"ruleId,omitempty"`
	RuleName        string           `json:"ruleName"`
	Description     string           `json:"description"`
	Status          string           `json:"status"`
	Priority        string           `json:"priority"`
	ActivationDelay int              `json:"activationDelay"`
	Tags            []string         `json:"tags"`
	RTUID           []int64          `json:"rtuId"`
	Conditions      []WriteCondition `json:"conditions"`
}

// NewWriteRequest validates rule and builds the backend payload.
func NewWriteRequest(rule Rule) (WriteRequest, error) {
	if err := rule.Validate(); err != nil {
		return WriteRequest{}, err
	}
	rtuIDs, err := rule.RTUID.Numeric()
	if err != nil {
		return WriteRequest{}, err
	}
	tags := rule.Tags
	if tags == nil {
		tags = []string{}
	}
	conditions := make([]WriteCondition, 0, len(rule.Conditions))
	for _, c := range rule.Conditions {
		order := c.ConditionOrder
		if order == 0 {
			order = 1
		}
		conditions = append(conditions, WriteCondition{
			SensorType:      c.SensorType,
			SensorID:        c.SensorID,
			Operator:        c.Operator,
			Value:           c.Value,
			Function:        c.Function,
			ConditionOrder:  order,
			LogicalOperator: c.LogicalOperator,
		})
	}
	return WriteRequest{
		RuleID:          rule.RuleID,
		RuleName:        rule.RuleName,
		Description:     rule.Description,
		Status:          rule.Status,
		Priority:        rule.Priority,
		ActivationDelay: rule.ActivationDelay,
		Tags:            tags,
		RTUID:           rtuIDs,
		Conditions:      conditions,
	}, nil
}

// RTU is a remote terminal unit with its sensors grouped by type.
type RTU struct {
	RTUID   FlexString  `json:"rtuId"`
	RTUName string      `json:"rtuName"`
	Sensors []RTUSensor `json:"sensors"`
}

// RTUSensor is one sensor of an RTU.
type RTUSensor struct {
	SensorType string     `json:"sensorType"`
	SensorID   FlexString `json:"sensorId"`
}
