package domain

// Well-known system category ids. These match the seeded rows of the
// categories table; the classifier and the resolver fall back to them.
const (
	CategoryGroceries     = "1f7b4e58-6c3a-4e9d-9b21-0d8c5a7f3e10"
	CategoryCafe          = "2c9e1a74-5d2b-4f08-8a63-9e4b7c1d5f22"
	CategoryTransport     = "3b5d8f26-1e9c-4a71-b054-6f2a8d3c7e34"
	CategoryFuel          = "4e8a2c91-7f5d-4b36-a928-1c6e9b4d2f46"
	CategoryHealth        = "5a1f6d83-3b8e-4c52-97e0-8d4f2a6c1b58"
	CategoryShopping      = "6d3b9e47-8a1f-4d25-b6c9-2e7a5f8d3c60"
	CategoryEntertainment = "7f5c2a19-4d6b-4e83-a1f7-9b3e6c8a5d72"
	CategoryUtilities     = "8b7e4f62-9c3a-4a18-d5b2-4a1f7e9c6b84"
	CategoryTravel        = "9c1a6d35-2e8f-4b94-c7d0-5b2a8f1e4d96"
	CategoryOther         = "a2e8b5f1-7d4c-4f60-92a8-6c3b9d5e2fa8"
	CategoryTransfers     = "b4f0c7a3-1a6e-4d29-85b3-7d5c0a2f6eb0"
)

// Category is a spending/income bucket. The global table is shared by all
// users; per-user customization lives in CategoryOverride.
type Category struct {
	ID       string
	Name     string
	Icon     string
	Color    string
	IsActive bool
}

// CategoryOverride is a sparse per-user overlay merged onto the global
// category table at read time. Nil fields mean "keep the base value".
type CategoryOverride struct {
	UserID     string
	CategoryID string
	CustomName *string
	IsActive   *bool
}
