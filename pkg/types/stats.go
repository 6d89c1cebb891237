package types

import "time"

// Raw aggregates read from the database; reporting turns them into the
// dashboard shapes.

type CategoryCount struct {
	Category FoodCategory `db:"category"`
	Count    int          `db:"count"`
}

type MonthCount struct {
	Month time.Time `db:"month"`
	Count int       `db:"count"`
}

type AccountCounts struct {
	Staff  int `db:"staff"`
	Donors int `db:"donors"`
}

type FoodItemTotals struct {
	Total         int `db:"total"`
	Redistributed int `db:"redistributed"`
	Quantity      int `db:"quantity"`
}
