package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/candlepin/candlepin-sub005/internal/domain/permission"
	"github.com/candlepin/candlepin-sub005/internal/domain/pool"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/persistence/models"
	"github.com/candlepin/candlepin-sub005/internal/shared/constants"
	"github.com/candlepin/candlepin-sub005/internal/shared/db"
	"github.com/candlepin/candlepin-sub005/internal/shared/matcher"
	"github.com/candlepin/candlepin-sub005/internal/shared/query"
)

// poolSortColumns maps API sort fields to pool columns.
var poolSortColumns = map[string]string{
	"id":             poolIDColumn,
	"productId":      constants.TablePools + ".product_id",
	"quantity":       constants.TablePools + ".quantity",
	"consumed":       constants.TablePools + ".consumed",
	"startDate":      constants.TablePools + ".start_date",
	"endDate":        constants.TablePools + ".end_date",
	"contractNumber": constants.TablePools + ".contract_number",
	"orderNumber":    constants.TablePools + ".order_number",
	"subscriptionId": constants.TablePools + ".source_subscription_id",
	"created":        constants.TablePools + ".created_at",
	"updated":        constants.TablePools + ".updated_at",
}

// Subqueries correlated on cp_pools. Each takes its bound arguments in the
// order of its placeholders.
const (
	poolAttrExists = "EXISTS (SELECT 1 FROM " + constants.TablePoolAttributes + " pa" +
		" WHERE pa.pool_id = " + constants.TablePools + ".id AND pa.name = ? AND %s)"

	poolAttrAbsent = "NOT EXISTS (SELECT 1 FROM " + constants.TablePoolAttributes + " pa" +
		" WHERE pa.pool_id = " + constants.TablePools + ".id AND pa.name = ?)"

	productAttrExists = "EXISTS (SELECT 1 FROM " + constants.TableOwnerProducts + " op" +
		" JOIN " + constants.TableProductAttributes + " pra ON pra.product_uuid = op.product_uuid" +
		" WHERE op.owner_id = " + constants.TablePools + ".owner_id" +
		" AND op.product_id = " + constants.TablePools + ".product_id" +
		" AND pra.name = ? AND %s)"

	productNameLike = "EXISTS (SELECT 1 FROM " + constants.TableOwnerProducts + " op" +
		" JOIN " + constants.TableProducts + " pr ON pr.uuid = op.product_uuid" +
		" WHERE op.owner_id = " + constants.TablePools + ".owner_id" +
		" AND op.product_id = " + constants.TablePools + ".product_id AND %s)"

	providedIDLike = "EXISTS (SELECT 1 FROM " + constants.TablePoolProvidedProducts + " ppp" +
		" WHERE ppp.pool_id = " + constants.TablePools + ".id AND %s)"

	providedNameLike = "EXISTS (SELECT 1 FROM " + constants.TablePoolProvidedProducts + " ppp" +
		" JOIN " + constants.TableOwnerProducts + " op ON op.owner_id = " + constants.TablePools + ".owner_id AND op.product_id = ppp.product_id" +
		" JOIN " + constants.TableProducts + " pr ON pr.uuid = op.product_uuid" +
		" WHERE ppp.pool_id = " + constants.TablePools + ".id AND %s)"

	providedContentLike = "EXISTS (SELECT 1 FROM " + constants.TablePoolProvidedProducts + " ppp" +
		" JOIN " + constants.TableOwnerProducts + " op ON op.owner_id = " + constants.TablePools + ".owner_id AND op.product_id = ppp.product_id" +
		" JOIN " + constants.TableProductContents + " pc ON pc.product_uuid = op.product_uuid" +
		" JOIN " + constants.TableContents + " c ON c.uuid = pc.content_uuid" +
		" WHERE ppp.pool_id = " + constants.TablePools + ".id AND (%s OR %s))"

	providedIn = "EXISTS (SELECT 1 FROM " + constants.TablePoolProvidedProducts + " ppp" +
		" WHERE ppp.pool_id = " + constants.TablePools + ".id AND ppp.product_id IN ?)"

	derivedProvidedIn = "EXISTS (SELECT 1 FROM " + constants.TablePoolDerivedProvidedProducts + " dpp" +
		" WHERE dpp.pool_id = " + constants.TablePools + ".id AND dpp.product_id IN ?)"

	blankValue = "(%[1]s IS NULL OR %[1]s = '')"
)

// ListAvailable returns the pools matching q. Predicates that storage can
// evaluate are pushed into SQL; when q carries a consumer the rows are then
// narrowed by pool.ConsumerEligibility and paged in memory so the total
// stays exact.
func (r *PoolRepositoryImpl) ListAvailable(ctx context.Context, q pool.AvailabilityQuery) (*query.Page[*pool.Pool], error) {
	page := q.Page()
	if q.OwnerMismatch() {
		r.logger.Warnw("consumer does not belong to the requested owner",
			"owner_id", q.OwnerID(),
			"consumer_owner_id", q.Consumer().OwnerID(),
		)
		empty := query.ApplyPaging([]*pool.Pool{}, page)
		return &empty, nil
	}

	orderBy, err := page.OrderClause(poolSortColumns, poolIDColumn)
	if err != nil {
		return nil, err
	}

	where := availabilityPredicate(q)
	base := r.conn(ctx).Model(&models.PoolModel{})
	if !where.empty() {
		base = base.Where(where.sql, where.args...)
	}
	base = base.Session(&gorm.Session{})

	if q.NeedsPostFilter() {
		var rows []models.PoolModel
		if err := base.Order(orderBy).Find(&rows).Error; err != nil {
			r.logger.Errorw("failed to list available pools", "owner_id", q.OwnerID(), "error", err)
			return nil, fmt.Errorf("failed to list available pools: %w", err)
		}
		pools, err := r.hydrate(ctx, rows)
		if err != nil {
			return nil, err
		}
		eligible := pool.NewConsumerEligibility(q.Consumer()).Filter(pools)
		result := query.ApplyPaging(eligible, page)
		return &result, nil
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count available pools", "owner_id", q.OwnerID(), "error", err)
		return nil, fmt.Errorf("failed to count available pools: %w", err)
	}

	find := base.Order(orderBy)
	if page.IsPaging() {
		find = find.Offset(page.Offset()).Limit(page.Limit())
	}
	var rows []models.PoolModel
	if err := find.Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list available pools", "owner_id", q.OwnerID(), "error", err)
		return nil, fmt.Errorf("failed to list available pools: %w", err)
	}
	pools, err := r.hydrate(ctx, rows)
	if err != nil {
		return nil, err
	}

	result := query.Page[*pool.Pool]{Items: pools, Total: total, Page: 1, PerPage: len(pools)}
	if page.IsPaging() {
		result.Page = page.Page
		result.PerPage = page.PerPage
	}
	return &result, nil
}

func availabilityPredicate(q pool.AvailabilityQuery) predicate {
	col := func(name string) string { return constants.TablePools + "." + name }
	block := db.InBlockSize()

	preds := []predicate{}
	if q.OwnerID() != "" {
		preds = append(preds, expr(col("owner_id")+" = ?", q.OwnerID()))
	}
	if q.ActiveOnly() {
		preds = append(preds, expr(col("active_subscription")+" = ?", true))
	}
	if restrictions := q.Restrictions(); len(restrictions) > 0 {
		preds = append(preds, restrictionPredicate(restrictions, block))
	}
	preds = append(preds, consumerPredicate(q))

	if ueber := q.ExcludedUeberProductID(); ueber != "" {
		preds = append(preds, expr(col("product_id")+" <> ?", ueber))
	}

	if activeOn, ok := q.ActiveOn(); ok {
		switch {
		case q.OnlyFuture():
			preds = append(preds, expr(col("start_date")+" >= ?", activeOn.UTC()))
		case q.AddFuture():
			preds = append(preds, expr(col("end_date")+" >= ?", activeOn.UTC()))
		default:
			preds = append(preds, expr(col("start_date")+" <= ? AND "+col("end_date")+" >= ?", activeOn.UTC(), activeOn.UTC()))
		}
	}
	if after, ok := q.After(); ok {
		preds = append(preds, expr(col("start_date")+" >= ?", after.UTC()))
	}

	if ids := q.ProductIDs(); len(ids) > 0 {
		var byProduct []predicate
		for _, part := range db.Partition(ids, block) {
			byProduct = append(byProduct,
				expr(col("product_id")+" IN ?", part),
				expr(col("derived_product_id")+" IN ?", part),
				expr(providedIn, part),
				expr(derivedProvidedIn, part),
			)
		}
		preds = append(preds, or(byProduct...))
	}

	if sub := q.SubscriptionID(); sub != "" {
		preds = append(preds, expr(col("source_subscription_id")+" = ?", sub))
	}
	if ids := q.PoolIDs(); len(ids) > 0 {
		preds = append(preds, inBlocks(col("id"), ids, block))
	}

	for _, term := range q.Matches() {
		preds = append(preds, matchPredicate(matcher.Sanitize(term)))
	}
	for _, f := range q.AttributeFilters() {
		preds = append(preds, attributeFilterPredicate(f))
	}

	return and(preds...)
}

// restrictionPredicate ORs the permission restrictions of the caller.
func restrictionPredicate(restrictions []permission.Restriction, block int) predicate {
	var preds []predicate
	for _, restriction := range restrictions {
		switch rs := restriction.(type) {
		case permission.OwnerRestriction:
			if len(rs.OwnerIDs) == 0 {
				preds = append(preds, expr("1 = 0"))
				continue
			}
			preds = append(preds, inBlocks(poolOwnerColumn, rs.OwnerIDs, block))
		case permission.UsernameRestriction:
			column := constants.TablePools + ".restricted_to_username"
			byUser := expr(column+" = ?", rs.Username)
			if rs.AllowUnset {
				byUser = or(byUser, expr(fmt.Sprintf(blankValue, column)))
			}
			if rs.OwnerID != "" {
				byUser = and(expr(poolOwnerColumn+" = ?", rs.OwnerID), byUser)
			}
			preds = append(preds, byUser)
		case permission.AttributeRestriction:
			preds = append(preds, mergedAttribute(rs.Name, "%s = ?", rs.Value))
		default:
			// Unknown restrictions grant nothing.
			preds = append(preds, expr("1 = 0"))
		}
	}
	return or(preds...)
}

func consumerPredicate(q pool.AvailabilityQuery) predicate {
	switch q.ConsumerPredicate() {
	case pool.ConsumerPredicateNoHostRequired:
		return expr(poolAttrAbsent, pool.AttrRequiresHost)
	case pool.ConsumerPredicateNotVirtOnly:
		return not(mergedAttribute(pool.AttrVirtOnly, "LOWER(%s) = ?", "true"))
	case pool.ConsumerPredicateMatchingHost:
		host, _ := q.GuestHostUUID()
		return expr("NOT "+fmt.Sprintf(poolAttrExists, "LOWER(COALESCE(pa.value, '')) <> LOWER(?)"),
			pool.AttrRequiresHost, host)
	default:
		return predicate{}
	}
}

// mergedAttribute matches name with the pool's own attribute first and the
// product attribute only when the pool does not define it. cond is a format
// with one %s for the value column and any number of placeholders.
func mergedAttribute(name, cond string, args ...any) predicate {
	poolCond := fmt.Sprintf(cond, "pa.value")
	poolArgs := append([]any{name}, args...)

	return or(
		expr(fmt.Sprintf(poolAttrExists, poolCond), poolArgs...),
		productOnlyAttribute(name, fmt.Sprintf(cond, "pra.value"), args...),
	)
}

// mergedAttributeAny is mergedAttribute over a condition built by valueCond
// for a value column, allowing several patterns per lookup.
func mergedAttributeAny(name string, valueCond func(column string) predicate) predicate {
	poolCond := valueCond("pa.value")
	productCond := valueCond("pra.value")

	poolArgs := append([]any{name}, poolCond.args...)
	productArgs := append(append([]any{name}, productCond.args...), name)

	return or(
		expr(fmt.Sprintf(poolAttrExists, poolCond.sql), poolArgs...),
		expr(fmt.Sprintf(productAttrExists, productCond.sql)+" AND "+poolAttrAbsent, productArgs...),
	)
}

// attributeFilterPredicate keeps pools whose merged attribute matches one
// include pattern, or a blank value when blanks are accepted, and drops
// pools matching an exclude pattern.
func attributeFilterPredicate(f pool.AttributeFilter) predicate {
	patternCond := func(patterns []string, blank bool) func(string) predicate {
		return func(column string) predicate {
			var preds []predicate
			for _, p := range patterns {
				preds = append(preds, expr(matcher.Like(column), matcher.Sanitize(p)))
			}
			if blank {
				preds = append(preds, expr(fmt.Sprintf(blankValue, column)))
			}
			if len(preds) == 0 {
				return expr("1 = 0")
			}
			return or(preds...)
		}
	}

	var include, exclude predicate
	if f.HasInclude() {
		include = mergedAttributeAny(f.Name, patternCond(f.IncludePatterns(), f.MatchesBlank()))
	}
	excludePatterns := f.ExcludePatterns()
	excludeBlank := len(excludePatterns) < len(f.Exclude)
	if len(excludePatterns) > 0 || excludeBlank {
		exclude = not(mergedAttributeAny(f.Name, patternCond(excludePatterns, excludeBlank)))
	}
	return and(include, exclude)
}

// matchPredicate ORs a LIKE pattern over the pool's searchable text. The
// support level is searched on the product only.
func matchPredicate(pattern string) predicate {
	col := func(name string) string { return constants.TablePools + "." + name }
	return or(
		expr(matcher.Like(col("contract_number")), pattern),
		expr(matcher.Like(col("order_number")), pattern),
		expr(matcher.Like(col("product_id")), pattern),
		expr(fmt.Sprintf(productNameLike, matcher.Like("pr.name")), pattern),
		expr(fmt.Sprintf(providedIDLike, matcher.Like("ppp.product_id")), pattern),
		expr(fmt.Sprintf(providedNameLike, matcher.Like("pr.name")), pattern),
		expr(fmt.Sprintf(providedContentLike, matcher.Like("c.name"), matcher.Like("c.label")), pattern, pattern),
		productOnlyAttribute(pool.AttrSupportLevel, matcher.Like("pra.value"), pattern),
	)
}

// productOnlyAttribute matches name on the product attribute when the pool
// does not define it. The pool's own value is never matched.
func productOnlyAttribute(name, cond string, args ...any) predicate {
	productArgs := append(append([]any{name}, args...), name)
	return expr(fmt.Sprintf(productAttrExists, cond)+" AND "+poolAttrAbsent, productArgs...)
}
