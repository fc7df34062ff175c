// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

// queries.go is the single source of truth for every aggregation the
// dashboard issues. Outputs build Query values here instead of carrying their
// own SQL literals, so one query has exactly one text and one cache identity.

package warehouse

// Parameterless dashboard aggregations. Their exact text is the cache key in
// the process-wide query cache, so these strings must stay stable.
const (
	totalOrdersSQL = `SELECT COUNT(DISTINCT order_id) AS total_orders FROM orders`

	totalUsersSQL = `SELECT COUNT(DISTINCT user_id) AS total_users FROM orders`

	totalProductsSQL = `SELECT COUNT(*) AS total_products FROM products`

	// Sampled to the first 10000 orders; the full table is tens of millions
	// of line items and the value box only needs an estimate.
	avgProductsSQL = `
SELECT AVG(product_count) AS avg_products FROM (
    SELECT order_id, COUNT(product_id) AS product_count
    FROM order_products_prior
    GROUP BY order_id
    LIMIT 10000
) AS counts`

	dowOrdersSQL = `
SELECT order_dow, COUNT(*) AS order_count
FROM orders
GROUP BY order_dow
ORDER BY order_dow`

	hourDistributionSQL = `
SELECT order_hour_of_day, COUNT(*) AS order_count
FROM orders
GROUP BY order_hour_of_day
ORDER BY order_hour_of_day`

	heatmapSQL = `
SELECT order_dow, order_hour_of_day, COUNT(*) AS order_count
FROM orders
GROUP BY order_dow, order_hour_of_day`

	topProductsSQL = `
SELECT p.product_name, COUNT(*) AS order_count
FROM order_products_prior opp
JOIN products p ON opp.product_id = p.product_id
GROUP BY p.product_name
ORDER BY order_count DESC
LIMIT 20`

	reorderRateByProductSQL = `
SELECT p.product_name,
       COUNT(*) AS order_count,
       SUM(opp.reordered) AS reorder_count,
       SUM(opp.reordered)::float / COUNT(*) AS reorder_rate
FROM order_products_prior opp
JOIN products p ON opp.product_id = p.product_id
GROUP BY p.product_name
HAVING COUNT(*) > 100
ORDER BY reorder_rate DESC
LIMIT 20`

	aisleOrdersSQL = `
SELECT a.aisle, COUNT(*) AS order_count
FROM order_products_prior opp
JOIN products p ON opp.product_id = p.product_id
JOIN aisles a ON p.aisle_id = a.aisle_id
GROUP BY a.aisle
ORDER BY order_count DESC
LIMIT 20`

	deptOrdersSQL = `
SELECT d.department, COUNT(*) AS order_count
FROM order_products_prior opp
JOIN products p ON opp.product_id = p.product_id
JOIN departments d ON p.department_id = d.department_id
GROUP BY d.department
ORDER BY order_count DESC`

	reorderRateByDeptSQL = `
SELECT d.department,
       COUNT(*) AS order_count,
       SUM(opp.reordered) AS reorder_count,
       SUM(opp.reordered)::float / COUNT(*) AS reorder_rate
FROM order_products_prior opp
JOIN products p ON opp.product_id = p.product_id
JOIN departments d ON p.department_id = d.department_id
GROUP BY d.department
ORDER BY reorder_rate DESC`

	basketSizeDowSQL = `
WITH order_sizes AS (
    SELECT o.order_id, o.order_dow, COUNT(opp.product_id) AS basket_size
    FROM orders o
    JOIN order_products_prior opp ON o.order_id = opp.order_id
    GROUP BY o.order_id, o.order_dow
    LIMIT 100000
)
SELECT order_dow, AVG(basket_size) AS avg_basket_size
FROM order_sizes
GROUP BY order_dow
ORDER BY order_dow`

	basketSizeHourSQL = `
WITH order_sizes AS (
    SELECT o.order_id, o.order_hour_of_day, COUNT(opp.product_id) AS basket_size
    FROM orders o
    JOIN order_products_prior opp ON o.order_id = opp.order_id
    GROUP BY o.order_id, o.order_hour_of_day
)
SELECT order_hour_of_day, AVG(basket_size) AS avg_basket_size
FROM order_sizes
GROUP BY order_hour_of_day
ORDER BY order_hour_of_day`

	productPairsSQL = `
WITH product_pairs AS (
    SELECT a.product_id AS product_id_1,
           b.product_id AS product_id_2,
           COUNT(*) AS pair_count
    FROM order_products_prior a
    JOIN order_products_prior b
        ON a.order_id = b.order_id AND a.product_id < b.product_id
    GROUP BY a.product_id, b.product_id
    ORDER BY pair_count DESC
    LIMIT 20
)
SELECT p1.product_name AS product_1,
       p2.product_name AS product_2,
       pp.pair_count
FROM product_pairs pp
JOIN products p1 ON pp.product_id_1 = p1.product_id
JOIN products p2 ON pp.product_id_2 = p2.product_id
ORDER BY pp.pair_count DESC`
)

// Parameterized queries.
const (
	orderDistributionSQL = `
SELECT order_count, COUNT(*) AS user_count FROM (
    SELECT user_id, COUNT(*) AS order_count
    FROM orders
    GROUP BY user_id
) AS counts
WHERE order_count >= $1
GROUP BY order_count
ORDER BY order_count
LIMIT 50`

	userChoicesSQL = `SELECT DISTINCT user_id FROM orders ORDER BY user_id LIMIT $1`

	userProductsSQL = `
SELECT p.product_name
FROM orders o
JOIN order_products_prior opp ON o.order_id = opp.order_id
JOIN products p ON opp.product_id = p.product_id
WHERE o.user_id = $1
GROUP BY p.product_name
ORDER BY COUNT(*) DESC
LIMIT 20`

	// Aisle-overlap recommender: candidate products come from aisles the user
	// already shops, minus products the user already bought, ranked by how
	// often everyone else buys them. $1 is bound in both the ownership CTE
	// and the self-exclusion predicate; the exclusion is intentional so the
	// user's own purchases never inflate candidate frequency.
	recommendationsSQL = `
WITH user_products AS (
    SELECT DISTINCT opp.product_id
    FROM orders o
    JOIN order_products_prior opp ON o.order_id = opp.order_id
    WHERE o.user_id = $1
),
user_aisles AS (
    SELECT DISTINCT p.aisle_id
    FROM user_products up
    JOIN products p ON up.product_id = p.product_id
),
potential_products AS (
    SELECT p.product_id, p.product_name, COUNT(*) AS frequency
    FROM orders o
    JOIN order_products_prior opp ON o.order_id = opp.order_id
    JOIN products p ON opp.product_id = p.product_id
    WHERE p.aisle_id IN (SELECT aisle_id FROM user_aisles)
      AND p.product_id NOT IN (SELECT product_id FROM user_products)
      AND o.user_id <> $1
    GROUP BY p.product_id, p.product_name
    HAVING COUNT(*) > $2
)
SELECT product_name, frequency
FROM potential_products
ORDER BY frequency DESC
LIMIT $3`
)

// Query constructors. Each dashboard output calls exactly one of these.

func TotalOrdersQuery() Query    { return NewQuery("total_orders", totalOrdersSQL) }
func TotalUsersQuery() Query     { return NewQuery("total_users", totalUsersSQL) }
func TotalProductsQuery() Query  { return NewQuery("total_products", totalProductsSQL) }
func AvgProductsQuery() Query    { return NewQuery("avg_products", avgProductsSQL) }
func DowOrdersQuery() Query      { return NewQuery("dow_orders", dowOrdersSQL) }
func HourDistQuery() Query       { return NewQuery("hour_distribution", hourDistributionSQL) }
func HeatmapQuery() Query        { return NewQuery("heatmap_distribution", heatmapSQL) }
func TopProductsQuery() Query    { return NewQuery("top_products", topProductsSQL) }
func ReorderRateQuery() Query    { return NewQuery("reorder_rate", reorderRateByProductSQL) }
func AisleOrdersQuery() Query    { return NewQuery("aisle_orders", aisleOrdersSQL) }
func DeptOrdersQuery() Query     { return NewQuery("dept_orders", deptOrdersSQL) }
func DeptReorderQuery() Query    { return NewQuery("dept_reorder", reorderRateByDeptSQL) }
func BasketSizeDowQuery() Query  { return NewQuery("basket_size_dow", basketSizeDowSQL) }
func BasketSizeHourQuery() Query { return NewQuery("basket_size_hour", basketSizeHourSQL) }
func ProductPairsQuery() Query   { return NewQuery("product_pairs", productPairsSQL) }

// OrderDistributionQuery counts users per order count, restricted to users
// with at least minOrders orders.
func OrderDistributionQuery(minOrders int) Query {
	return NewQuery("order_distribution", orderDistributionSQL, minOrders)
}

// UserChoicesQuery lists user ids for the dashboard's user selector.
func UserChoicesQuery(limit int) Query {
	return NewQuery("user_choices", userChoicesSQL, limit)
}

// UserProductsQuery lists a user's most purchased products.
func UserProductsQuery(userID int) Query {
	return NewQuery("user_products", userProductsSQL, userID)
}

// RecommendationsQuery builds the aisle-overlap recommendation query for one
// user. minFrequency is the cross-user purchase count a candidate must exceed
// and limit caps the result.
func RecommendationsQuery(userID, minFrequency, limit int) Query {
	return NewQuery("recommendations", recommendationsSQL, userID, minFrequency, limit)
}
