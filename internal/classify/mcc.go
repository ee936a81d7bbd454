package classify

import (
	"github.com/ohalushko/moneta/internal/domain"
)

// mccToCategory maps merchant category codes from the bank API to system
// category ids. The table covers the codes Monobank actually emits for
// everyday spending; anything else falls through to the label path.
var mccToCategory = map[int]string{
	// Groceries and supermarkets
	5411: domain.CategoryGroceries,
	5422: domain.CategoryGroceries,
	5441: domain.CategoryGroceries,
	5451: domain.CategoryGroceries,
	5462: domain.CategoryGroceries,
	5499: domain.CategoryGroceries,

	// Restaurants, cafes, fast food
	5811: domain.CategoryCafe,
	5812: domain.CategoryCafe,
	5813: domain.CategoryCafe,
	5814: domain.CategoryCafe,

	// Transport
	4111: domain.CategoryTransport,
	4112: domain.CategoryTransport,
	4121: domain.CategoryTransport,
	4131: domain.CategoryTransport,
	4789: domain.CategoryTransport,

	// Fuel and service stations
	5172: domain.CategoryFuel,
	5541: domain.CategoryFuel,
	5542: domain.CategoryFuel,

	// Pharmacies, doctors, dentists
	5912: domain.CategoryHealth,
	8011: domain.CategoryHealth,
	8021: domain.CategoryHealth,
	8062: domain.CategoryHealth,
	8099: domain.CategoryHealth,

	// Retail shopping
	5311: domain.CategoryShopping,
	5331: domain.CategoryShopping,
	5399: domain.CategoryShopping,
	5651: domain.CategoryShopping,
	5661: domain.CategoryShopping,
	5691: domain.CategoryShopping,
	5732: domain.CategoryShopping,
	5942: domain.CategoryShopping,
	5999: domain.CategoryShopping,

	// Entertainment
	5815: domain.CategoryEntertainment,
	5816: domain.CategoryEntertainment,
	7832: domain.CategoryEntertainment,
	7922: domain.CategoryEntertainment,
	7941: domain.CategoryEntertainment,
	7997: domain.CategoryEntertainment,

	// Utilities and telecom
	4812: domain.CategoryUtilities,
	4814: domain.CategoryUtilities,
	4899: domain.CategoryUtilities,
	4900: domain.CategoryUtilities,

	// Travel
	3000: domain.CategoryTravel,
	4511: domain.CategoryTravel,
	4722: domain.CategoryTravel,
	7011: domain.CategoryTravel,
}

// ByMCC maps a numeric merchant category code to a category id. The second
// return value is false when the code is absent from the table; the caller
// must fall back (normally to the "Other" category).
func ByMCC(code int) (string, bool) {
	id, ok := mccToCategory[code]
	return id, ok
}
