package catalog

// entries is the full query catalog over the listings table. Templates use
// named :binds for every user value and the neutral money(expr) call for
// currency display, which the dialect layer expands per driver. Only the
// filterable entries route parameters through the {where_clause} slot.
var entries = []Entry{
	{
		ID:          1,
		Description: "Listings with a certain number of reviews in a price range",
		SQL: `SELECT l.name, money(l.price) AS price, ROUND(l.reviews_per_month, 2) AS reviews_per_month
FROM listings l
WHERE l.price BETWEEN :lowest_value AND :highest_value
  AND l.number_of_reviews >= :min_reviews
ORDER BY l.reviews_per_month DESC`,
		Params: []Param{
			{Name: "lowest_value", Prompt: "Lowest price", Kind: KindFloat},
			{Name: "highest_value", Prompt: "Highest price", Kind: KindFloat},
			{Name: "min_reviews", Prompt: "Minimum number of reviews", Kind: KindInteger},
		},
	},
	{
		ID:          2,
		Description: "Listing count per neighbourhood for a price range and availability",
		SQL: `SELECT l.neighbourhood, COUNT(l.name) AS listings_count
FROM listings l
WHERE l.price BETWEEN :min_price AND :max_price
  AND l.availability_365 >= :min_availability
GROUP BY l.neighbourhood
ORDER BY listings_count DESC`,
		Params: []Param{
			{Name: "min_price", Prompt: "Minimum price", Kind: KindFloat},
			{Name: "max_price", Prompt: "Maximum price", Kind: KindFloat},
			{Name: "min_availability", Prompt: "Minimum availability (days per year)", Kind: KindInteger},
		},
	},
	{
		ID:          3,
		Description: "Average price and review volume per neighbourhood",
		SQL: `SELECT l.neighbourhood, money(AVG(l.price)) AS average_price, ROUND(AVG(l.price), 2) AS avg_price_value, SUM(l.number_of_reviews) AS total_reviews
FROM listings l
GROUP BY l.neighbourhood
ORDER BY total_reviews DESC`,
		Analysis: AnalysisNeighbourhoodPrice,
	},
	{
		ID:          4,
		Description: "Most reviewed listings in a price range",
		SQL: `SELECT l.name, money(l.price) AS price, l.number_of_reviews
FROM listings l
WHERE l.price BETWEEN :lowest_value AND :highest_value
ORDER BY l.number_of_reviews DESC
LIMIT 10`,
		Params: []Param{
			{Name: "lowest_value", Prompt: "Lowest price", Kind: KindFloat},
			{Name: "highest_value", Prompt: "Highest price", Kind: KindFloat},
		},
	},
	{
		ID:          5,
		Description: "Neighbourhoods with the highest availability and average price",
		SQL: `SELECT l.neighbourhood, ROUND(AVG(l.availability_365), 2) AS avg_availability, money(AVG(l.price)) AS avg_price
FROM listings l
GROUP BY l.neighbourhood
ORDER BY avg_availability DESC
LIMIT 10`,
	},
	{
		ID:          6,
		Description: "Neighbourhoods with the most listings under a nightly price cap",
		SQL: `SELECT l.neighbourhood, COUNT(l.name) AS listings_count
FROM listings l
WHERE l.price <= :max_price
GROUP BY l.neighbourhood
ORDER BY listings_count DESC`,
		Params: []Param{
			{Name: "max_price", Prompt: "Maximum price per night", Kind: KindFloat},
		},
		Analysis: AnalysisNeighbourhoodListings,
	},
	{
		ID:          7,
		Description: "Group stays with positive feedback below the city average price",
		SQL: `WITH city_avg AS (
    SELECT AVG(price) AS average_price
    FROM listings
)
SELECT l.name, money(l.price) AS nightly_price, l.number_of_reviews
FROM listings l, city_avg
WHERE l.accommodates >= :group_size
  AND l.price <= city_avg.average_price
  AND l.number_of_reviews >= :min_reviews
ORDER BY l.number_of_reviews DESC`,
		Params: []Param{
			{Name: "group_size", Prompt: "Minimum group size", Kind: KindInteger},
			{Name: "min_reviews", Prompt: "Minimum number of reviews", Kind: KindInteger},
		},
	},
	{
		ID:          8,
		Description: "Review totals and average price by room type",
		SQL: `SELECT l.room_type, SUM(l.number_of_reviews) AS total_reviews, money(AVG(l.price)) AS avg_price
FROM listings l
GROUP BY l.room_type
ORDER BY total_reviews DESC`,
		Analysis: AnalysisRoomTypeReviews,
	},
	{
		ID:          9,
		Description: "Price versus popularity across neighbourhoods",
		SQL: `SELECT l.neighbourhood, money(AVG(l.price)) AS avg_price, ROUND(AVG(l.price), 2) AS avg_price_value, ROUND(AVG(l.reviews_per_month), 2) AS avg_reviews_per_month
FROM listings l
WHERE l.price <= :max_price
  AND l.reviews_per_month IS NOT NULL
  AND l.price IS NOT NULL
GROUP BY l.neighbourhood
ORDER BY avg_reviews_per_month DESC`,
		Params: []Param{
			{Name: "max_price", Prompt: "Maximum price per night", Kind: KindFloat},
		},
		Analysis: AnalysisPriceVsPopularity,
	},
	{
		ID:          10,
		Description: "Best value listings in under-serviced areas",
		SQL: `SELECT l.name, l.neighbourhood, money(l.price) AS price, l.number_of_reviews, l.availability_365
FROM listings l
WHERE l.price <= :max_price
  AND l.availability_365 < :max_availability
ORDER BY l.number_of_reviews DESC, l.price ASC`,
		Params: []Param{
			{Name: "max_price", Prompt: "Maximum price per night", Kind: KindFloat},
			{Name: "max_availability", Prompt: "Maximum availability (days per year)", Kind: KindInteger},
		},
	},
	{
		ID:          11,
		Description: "Listings ordered by nightly price",
		SQL: `SELECT l.name, l.neighbourhood, money(l.price) AS nightly_price
FROM listings l
WHERE l.price IS NOT NULL
{order_by_clause}`,
		Sortable: []string{"price", "name", "neighbourhood"},
	},
	{
		ID:          12,
		Description: "Listings with a minimum number of reviews",
		SQL: `SELECT l.name, l.number_of_reviews
FROM listings l
WHERE l.number_of_reviews >= :min_reviews
ORDER BY l.number_of_reviews DESC`,
		Params: []Param{
			{Name: "min_reviews", Prompt: "Minimum number of reviews", Kind: KindInteger},
		},
	},
	{
		ID:          13,
		Description: "Affordable listings with a review threshold",
		SQL: `SELECT l.name, money(l.price) AS price, l.number_of_reviews
FROM listings l
WHERE l.price <= :max_price
  AND l.number_of_reviews >= :min_reviews
ORDER BY l.price DESC, l.number_of_reviews DESC`,
		Params: []Param{
			{Name: "max_price", Prompt: "Maximum price per night", Kind: KindFloat},
			{Name: "min_reviews", Prompt: "Minimum number of reviews", Kind: KindInteger},
		},
	},
	{
		ID:          14,
		Description: "Likelihood of a listing being available",
		SQL: `SELECT l.name, l.availability_365, ROUND((l.availability_365 / 365.0) * 100, 2) AS availability_percentage
FROM listings l
ORDER BY availability_percentage DESC`,
	},
	{
		ID:          15,
		Description: "Availability versus nightly price",
		SQL: `SELECT l.availability_365, l.price
FROM listings l
WHERE l.price IS NOT NULL
  AND l.price <= :max_price`,
		Params: []Param{
			{Name: "max_price", Prompt: "Maximum price per night", Kind: KindFloat},
		},
		Analysis: AnalysisAvailabilityVsPrice,
	},
	{
		ID:          16,
		Description: "Rating extremes, ten listings at a time",
		SQL: `SELECT l.name, ROUND(l.review_scores_rating, 2) AS rating
FROM listings l
WHERE l.review_scores_rating IS NOT NULL
{order_by_clause}
LIMIT 10`,
		Sortable: []string{"review_scores_rating"},
	},
	{
		ID:          17,
		Description: "Listings offering a specific amenity",
		SQL: `SELECT l.name, l.neighbourhood, l.room_type, money(l.price) AS nightly_price, l.number_of_reviews
FROM listings l
WHERE l.amenities LIKE '%' || :amenity || '%'
ORDER BY l.number_of_reviews DESC`,
		Params: []Param{
			{Name: "amenity", Prompt: "Amenity keyword", Kind: KindText},
		},
	},
	{
		ID:          18,
		Description: "Browse listings with optional filters",
		SQL: `SELECT l.name, l.neighbourhood, l.room_type, money(l.price) AS nightly_price, l.number_of_reviews, l.review_scores_rating
FROM listings l
{where_clause}
{order_by_clause}`,
		Params: []Param{
			{Name: "min_price", Prompt: "Minimum price", Kind: KindFloat},
			{Name: "max_price", Prompt: "Maximum price", Kind: KindFloat},
			{Name: "neighbourhood", Prompt: "Neighbourhood", Kind: KindText},
			{Name: "room_type", Prompt: "Room type", Kind: KindText},
			{Name: "min_accommodates", Prompt: "Minimum guests", Kind: KindInteger},
			{Name: "min_number_of_reviews", Prompt: "Minimum number of reviews", Kind: KindInteger},
			{Name: "min_review_scores_rating", Prompt: "Minimum rating", Kind: KindFloat},
		},
		Sortable:   []string{"price", "number_of_reviews", "review_scores_rating", "name"},
		Filterable: true,
	},
	{
		ID:          19,
		Description: "Listing share by room type",
		SQL: `SELECT l.room_type, COUNT(l.name) AS listings_count
FROM listings l
GROUP BY l.room_type
ORDER BY listings_count DESC`,
		Analysis: AnalysisRoomTypeShare,
	},
}
