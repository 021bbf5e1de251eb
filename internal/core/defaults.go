package core

// DefaultCategories is the category set seeded into an empty store.
var DefaultCategories = []Category{
	{Name: "Food & Dining", Type: Expense, Icon: "🍔", Color: "#FF6B6B", IsDefault: true},
	{Name: "Transportation", Type: Expense, Icon: "🚗", Color: "#4ECDC4", IsDefault: true},
	{Name: "Shopping", Type: Expense, Icon: "🛍️", Color: "#9B59B6", IsDefault: true},
	{Name: "Entertainment", Type: Expense, Icon: "🎬", Color: "#F39C12", IsDefault: true},
	{Name: "Bills & Utilities", Type: Expense, Icon: "💡", Color: "#3498DB", IsDefault: true},
	{Name: "Health", Type: Expense, Icon: "🏥", Color: "#E74C3C", IsDefault: true},
	{Name: "Education", Type: Expense, Icon: "📚", Color: "#1ABC9C", IsDefault: true},
	{Name: "Personal Care", Type: Expense, Icon: "💅", Color: "#E91E63", IsDefault: true},
	{Name: "Home", Type: Expense, Icon: "🏠", Color: "#795548", IsDefault: true},
	{Name: "Travel", Type: Expense, Icon: "✈️", Color: "#00BCD4", IsDefault: true},
	{Name: "Gifts", Type: Expense, Icon: "🎁", Color: "#FF4081", IsDefault: true},
	{Name: "Other", Type: Expense, Icon: "📦", Color: "#607D8B", IsDefault: true},

	{Name: "Salary", Type: Income, Icon: "💰", Color: "#27AE60", IsDefault: true},
	{Name: "Freelance", Type: Income, Icon: "💼", Color: "#2ECC71", IsDefault: true},
	{Name: "Investments", Type: Income, Icon: "📈", Color: "#16A085", IsDefault: true},
	{Name: "Gifts Received", Type: Income, Icon: "🎁", Color: "#1ABC9C", IsDefault: true},
	{Name: "Refunds", Type: Income, Icon: "💵", Color: "#2980B9", IsDefault: true},
	{Name: "Other Income", Type: Income, Icon: "💸", Color: "#3498DB", IsDefault: true},
}

// AdjustmentCategoryName returns the category used for initial-balance entries.
func AdjustmentCategoryName(t TransactionType) string {
	if t == Income {
		return "Other Income"
	}
	return "Other"
}
