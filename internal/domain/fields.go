package domain

// FieldName identifies one of the canonical SOW fields.
type FieldName string

const (
	FieldProjectName   FieldName = "Project Name"
	FieldPractice      FieldName = "Practice"
	FieldTechnology    FieldName = "Technology"
	FieldCategory      FieldName = "Category"
	FieldManager       FieldName = "Manager"
	FieldClient        FieldName = "Client"
	FieldPartner       FieldName = "Partner"
	FieldBillingType   FieldName = "Billing Type"
	FieldStatus        FieldName = "Status"
	FieldBudgetedHours FieldName = "Budgeted Hours"
	FieldStartDate     FieldName = "Start date"
	FieldEndDate       FieldName = "End Date"
)

// FieldNames lists the canonical fields in output order.
func FieldNames() []FieldName {
	return []FieldName{
		FieldProjectName,
		FieldPractice,
		FieldTechnology,
		FieldCategory,
		FieldManager,
		FieldClient,
		FieldPartner,
		FieldBillingType,
		FieldStatus,
		FieldBudgetedHours,
		FieldStartDate,
		FieldEndDate,
	}
}

// SOWFields holds the extraction result for one document. All twelve fields
// are always present; a failed extraction leaves the zero value. JSON field
// order follows the canonical field list.
type SOWFields struct {
	ProjectName   string   `json:"Project Name"`
	Practice      string   `json:"Practice"`
	Technology    []string `json:"Technology"`
	Category      string   `json:"Category"`
	Manager       string   `json:"Manager"`
	Client        string   `json:"Client"`
	Partner       string   `json:"Partner"`
	BillingType   string   `json:"Billing Type"`
	Status        string   `json:"Status"`
	BudgetedHours string   `json:"Budgeted Hours"`
	StartDate     string   `json:"Start date"`
	EndDate       string   `json:"End Date"`
}

// NewSOWFields returns a fully defaulted result so callers never see nil
// slices in the output contract.
func NewSOWFields() *SOWFields {
	return &SOWFields{Technology: []string{}}
}

// Requirements is the structured SOW data the recommender ranks against.
type Requirements struct {
	ProjectName   string   `json:"project_name"`
	Technology    []string `json:"technology"`
	Practice      string   `json:"practice"`
	Category      string   `json:"category"`
	Client        string   `json:"client"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	BudgetedHours string   `json:"budgeted_hours"`
	BillingType   string   `json:"billing_type"`
	Status        string   `json:"status"`
}

// Requirements projects the extraction result into recommender input.
func (f *SOWFields) Requirements() Requirements {
	tech := f.Technology
	if tech == nil {
		tech = []string{}
	}
	return Requirements{
		ProjectName:   f.ProjectName,
		Technology:    tech,
		Practice:      f.Practice,
		Category:      f.Category,
		Client:        f.Client,
		StartDate:     f.StartDate,
		EndDate:       f.EndDate,
		BudgetedHours: f.BudgetedHours,
		BillingType:   f.BillingType,
		Status:        f.Status,
	}
}
