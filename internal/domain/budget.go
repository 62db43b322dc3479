package domain

// Nutrient role a basket line covers
type Role string

const (
	RoleProtein   Role = "PROTEIN"
	RoleCarb      Role = "CARB"
	RoleVegetable Role = "VEGETABLE"
	RoleFruit     Role = "FRUIT"
)

// ProposalStatus is the outcome of the tier search
type ProposalStatus string

const (
	StatusLocked            ProposalStatus = "LOCKED"
	StatusWarningOverBudget ProposalStatus = "WARNING_OVER_BUDGET"
)

// BudgetProposalRequest asks for a monthly basket
type BudgetProposalRequest struct {
	MonthlyBudget  int `json:"monthlyBudget"`
	TargetCalories int `json:"targetCalories"`
}

// BasketLine is one purchased SKU. Quantity is always positive.
type BasketLine struct {
	Name     string `json:"name"`
	SkuName  string `json:"skuName"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
	Link     string `json:"link"`
	ImageURL string `json:"imageUrl"`
}

// Cost returns price times quantity
func (l BasketLine) Cost() int {
	return l.Price * l.Quantity
}

// BudgetProposal is the optimizer's answer
type BudgetProposal struct {
	Budget         int            `json:"budget"`
	FinalCost      int            `json:"finalCost"`
	Tier           int            `json:"tier"`
	Status         ProposalStatus `json:"status"`
	WarningMessage string         `json:"warningMessage,omitempty"`
	Ingredients    []BasketLine   `json:"ingredients"`
}
