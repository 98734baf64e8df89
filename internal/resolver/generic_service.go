package resolver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"clinic-erp-be/internal/cacheinv"
	"clinic-erp-be/internal/entityconfig"
	"clinic-erp-be/internal/pkg/logger"
	"clinic-erp-be/internal/registry"
)

// GenericEntityService is the fallback read implementation: configuration-
// driven list and detail queries against the registered model's table, with
// a read-side cache in front.
type GenericEntityService struct {
	entityType string
	db         *gorm.DB
	entities   *registry.Registry
	configs    *entityconfig.Loader
	readCache  *cacheinv.ReadCache
	log        logger.ILogger
}

func NewGenericEntityService(
	entityType string,
	db *gorm.DB,
	entities *registry.Registry,
	configs *entityconfig.Loader,
	readCache *cacheinv.ReadCache,
	log logger.ILogger,
) *GenericEntityService {
	return &GenericEntityService{
		entityType: entityType,
		db:         db,
		entities:   entities,
		configs:    configs,
		readCache:  readCache,
		log:        log,
	}
}

func (s *GenericEntityService) tableName() (string, bool) {
	reg, ok := s.entities.Get(s.entityType)
	if !ok || reg.ModelPrototype == nil {
		return "", false
	}
	return reg.ModelPrototype.TableName(), true
}

// SearchEntityData implements EntitySearcher.
func (s *GenericEntityService) SearchEntityData(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	table, ok := s.tableName()
	if !ok {
		return &SearchResult{Items: []map[string]interface{}{}}, nil
	}
	cfg, ok := s.configs.Load(s.entityType)
	if !ok {
		return &SearchResult{Items: []map[string]interface{}{}}, nil
	}

	cacheKey := cacheinv.Key(s.entityType, req.TenantID.String(), searchSuffix(req))
	if s.readCache != nil {
		var cached SearchResult
		if s.readCache.Get(ctx, cacheKey, &cached) {
			return &cached, nil
		}
	}

	query := s.db.WithContext(ctx).Table(table).Where("tenant_id = ?", req.TenantID)
	if cfg.SoftDelete {
		query = query.Where("deleted_at IS NULL")
	}
	for name, value := range req.Filters {
		def := cfg.Field(name)
		if def == nil || !def.Filterable {
			continue
		}
		column := def.FilterColumn
		if column == "" {
			column = def.Name
		}
		query = query.Where(fmt.Sprintf("%s = ?", column), value)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	if orderBy := sortClause(req.Sort, cfg); orderBy != "" {
		query = query.Order(orderBy)
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query = query.Limit(limit).Offset(req.Offset)

	var items []map[string]interface{}
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	if items == nil {
		items = []map[string]interface{}{}
	}

	result := &SearchResult{Items: items, Total: total}
	if s.readCache != nil {
		s.readCache.Set(ctx, cacheKey, result)
	}
	return result, nil
}

// GetItemData implements ItemGetter.
func (s *GenericEntityService) GetItemData(ctx context.Context, tenantID, id uuid.UUID) (map[string]interface{}, error) {
	table, ok := s.tableName()
	if !ok {
		return nil, nil
	}

	var item map[string]interface{}
	err := s.db.WithContext(ctx).Table(table).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// sortClause validates a requested sort against the configured fields and
// returns a safe ORDER BY expression. Sort input arrives straight from the
// query string, so only "<field>" or "<field> ASC|DESC" forms over known,
// non-virtual fields pass through; anything else falls back to the
// configuration's default sort.
func sortClause(requested string, cfg *entityconfig.EntityConfiguration) string {
	parts := strings.Fields(requested)
	if len(parts) >= 1 && len(parts) <= 2 {
		if def := cfg.Field(parts[0]); def != nil && !def.Virtual {
			column := def.FilterColumn
			if column == "" {
				column = def.Name
			}
			if len(parts) == 1 {
				return column
			}
			switch strings.ToUpper(parts[1]) {
			case "ASC":
				return column + " ASC"
			case "DESC":
				return column + " DESC"
			}
		}
	}
	return cfg.DefaultSort
}

// searchSuffix builds a deterministic cache key suffix from the request.
func searchSuffix(req SearchRequest) string {
	keys := make([]string, 0, len(req.Filters))
	for k := range req.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	suffix := fmt.Sprintf("l%d:o%d:s%s", req.Limit, req.Offset, req.Sort)
	for _, k := range keys {
		suffix += fmt.Sprintf(":%s=%v", k, req.Filters[k])
	}
	return suffix
}
