package crud

import (
	"context"
	"time"

	"github.com/google/uuid"

	"clinic-erp-be/internal/entityconfig"
	"clinic-erp-be/internal/pkg/apperrors"
	"clinic-erp-be/internal/pkg/logger"
	"clinic-erp-be/internal/record"
	"clinic-erp-be/internal/registry"
	"clinic-erp-be/internal/repository/specification"
	"clinic-erp-be/internal/repository/unitofwork"
	"clinic-erp-be/internal/transform"
	"clinic-erp-be/pkg/events"
)

// RequestContext carries the caller identity every operation runs under.
type RequestContext struct {
	TenantID    uuid.UUID
	CallerID    uuid.UUID
	BranchID    *uuid.UUID
	Permissions []string
}

// WriteRequest is the inbound shape for every write verb.
type WriteRequest struct {
	EntityType string
	ItemID     uuid.UUID
	Payload    map[string]interface{}
	Context    RequestContext
}

// LocalityResolver resolves a default branch only when the model needs one.
type LocalityResolver interface {
	DefaultBranch(ctx context.Context, callerID, tenantID uuid.UUID) (*uuid.UUID, error)
}

// CacheInvalidator receives the fire-and-forget post-write signal.
type CacheInvalidator interface {
	InvalidateForEntity(ctx context.Context, entityType string, cascade bool)
}

// AuditPublisher receives post-write audit events.
type AuditPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Orchestrator is the single write path shared by every registered entity.
type Orchestrator struct {
	registry    *registry.Registry
	configs     *entityconfig.Loader
	transformer *transform.Transformer
	uowFactory  unitofwork.RepositoryFactory
	overrides   *OverrideTable
	locality    LocalityResolver
	invalidator CacheInvalidator
	audit       AuditPublisher
	log         logger.ILogger
}

func NewOrchestrator(
	reg *registry.Registry,
	configs *entityconfig.Loader,
	transformer *transform.Transformer,
	uowFactory unitofwork.RepositoryFactory,
	overrides *OverrideTable,
	locality LocalityResolver,
	invalidator CacheInvalidator,
	audit AuditPublisher,
	log logger.ILogger,
) *Orchestrator {
	return &Orchestrator{
		registry:    reg,
		configs:     configs,
		transformer: transformer,
		uowFactory:  uowFactory,
		overrides:   overrides,
		locality:    locality,
		invalidator: invalidator,
		audit:       audit,
		log:         log,
	}
}

// resolve runs the fail-fast prelude shared by every verb: configuration
// first, then the category and flag gates. It performs no I/O.
func (o *Orchestrator) resolve(entityType string, op entityconfig.Operation) (*registry.Registration, *entityconfig.EntityConfiguration, error) {
	reg, ok := o.registry.Get(entityType)
	if !ok {
		return nil, nil, &apperrors.ConfigurationError{EntityType: entityType, Reason: "entity is not registered"}
	}
	if !reg.Enabled {
		return nil, nil, &apperrors.ConfigurationError{EntityType: entityType, Reason: "entity is disabled"}
	}
	cfg, ok := o.configs.Load(entityType)
	if !ok {
		return nil, nil, &apperrors.ConfigurationError{EntityType: entityType, Reason: "configuration could not be resolved"}
	}
	if cfg.Category == entityconfig.CategoryTransaction && entityconfig.WriteOperations[op] {
		return nil, nil, &apperrors.ValidationError{EntityType: entityType, Reason: "write operations are not permitted for transaction entities"}
	}
	if !cfg.OperationAllowed(op) {
		return nil, nil, &apperrors.ValidationError{EntityType: entityType, Reason: string(op) + " is not enabled for this entity"}
	}
	return reg, cfg, nil
}

func (o *Orchestrator) overrideArgs(req WriteRequest) OverrideArgs {
	return OverrideArgs{
		TenantID:   req.Context.TenantID,
		CallerID:   req.Context.CallerID,
		BranchID:   req.Context.BranchID,
		ItemID:     req.ItemID,
		PayloadKey: PayloadKey(req.EntityType),
		Payload:    req.Payload,
	}
}

// Create inserts one record, via override or the generic path.
func (o *Orchestrator) Create(ctx context.Context, req WriteRequest) (uuid.UUID, error) {
	reg, cfg, err := o.resolve(req.EntityType, entityconfig.OpCreate)
	if err != nil {
		return uuid.Nil, err
	}

	if creator, ok := o.overrides.creator(req.EntityType); ok {
		id, err := creator.CreateEntity(ctx, o.overrideArgs(req))
		if err != nil {
			return uuid.Nil, err
		}
		o.afterWrite(ctx, "ENTITY_CREATED", req, id)
		return id, nil
	}

	if reg.ModelPrototype == nil {
		return uuid.Nil, &apperrors.ConfigurationError{EntityType: req.EntityType, Reason: "no model bound for generic create"}
	}

	rec := record.New(reg.ModelPrototype)
	id := uuid.New()

	if err := o.resolveLocality(ctx, rec, req); err != nil {
		return uuid.Nil, err
	}

	out := o.transformer.TransformForCreate(req.Payload, cfg)

	o.setColumn(rec, primaryKey(cfg), id)
	o.setColumn(rec, "tenant_id", req.Context.TenantID)
	o.applyFields(rec, cfg, out.Fields, req.Payload, func(def *entityconfig.FieldDefinition) bool {
		return def.ShowInCreate
	})
	o.applyContainers(rec, out)
	o.applyDefaults(rec, cfg, req.Payload)

	now := time.Now()
	o.setColumn(rec, "created_at", now)
	o.setColumn(rec, "updated_at", now)
	o.setColumn(rec, "created_by", req.Context.CallerID)
	o.setColumn(rec, "updated_by", req.Context.CallerID)

	uow := o.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return uuid.Nil, err
	}
	if err := uow.Records().Insert(ctx, rec); err != nil {
		_ = uow.Rollback()
		return uuid.Nil, err
	}
	if err := uow.Commit(); err != nil {
		return uuid.Nil, err
	}

	o.afterWrite(ctx, "ENTITY_CREATED", req, id)
	return id, nil
}

// Update merge-patches one tenant-scoped record.
func (o *Orchestrator) Update(ctx context.Context, req WriteRequest) error {
	reg, cfg, err := o.resolve(req.EntityType, entityconfig.OpUpdate)
	if err != nil {
		return err
	}

	if updater, ok := o.overrides.updater(req.EntityType); ok {
		if err := updater.UpdateEntity(ctx, o.overrideArgs(req)); err != nil {
			return err
		}
		o.afterWrite(ctx, "ENTITY_UPDATED", req, req.ItemID)
		return nil
	}

	if reg.ModelPrototype == nil {
		return &apperrors.ConfigurationError{EntityType: req.EntityType, Reason: "no model bound for generic update"}
	}

	uow := o.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	rec, err := o.findScoped(ctx, uow, reg, cfg, req, false)
	if err != nil {
		_ = uow.Rollback()
		return err
	}

	out := o.transformer.TransformForUpdate(req.Payload, rec, cfg)
	o.applyFields(rec, cfg, out.Fields, req.Payload, func(def *entityconfig.FieldDefinition) bool {
		return def.ShowInEdit
	})
	o.applyContainers(rec, out)
	o.setColumn(rec, "updated_at", time.Now())
	o.setColumn(rec, "updated_by", req.Context.CallerID)

	if err := uow.Records().Save(ctx, rec); err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	o.afterWrite(ctx, "ENTITY_UPDATED", req, req.ItemID)
	return nil
}

// Delete soft-deletes when the entity is configured for it, else removes the
// row.
func (o *Orchestrator) Delete(ctx context.Context, req WriteRequest) error {
	reg, cfg, err := o.resolve(req.EntityType, entityconfig.OpDelete)
	if err != nil {
		return err
	}

	if deleter, ok := o.overrides.deleter(req.EntityType); ok {
		if err := deleter.DeleteEntity(ctx, o.overrideArgs(req)); err != nil {
			return err
		}
		o.afterWrite(ctx, "ENTITY_DELETED", req, req.ItemID)
		return nil
	}

	if reg.ModelPrototype == nil {
		return &apperrors.ConfigurationError{EntityType: req.EntityType, Reason: "no model bound for generic delete"}
	}

	uow := o.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	rec, err := o.findScoped(ctx, uow, reg, cfg, req, false)
	if err != nil {
		_ = uow.Rollback()
		return err
	}

	if cfg.SoftDelete {
		if sd, ok := o.overrides.softDeleter(req.EntityType); ok {
			if err := sd.SoftDeleteEntity(ctx, rec, o.overrideArgs(req)); err != nil {
				_ = uow.Rollback()
				return err
			}
		} else {
			o.setColumn(rec, "deleted_at", time.Now())
			o.setColumn(rec, "deleted_by", req.Context.CallerID)
			if rec.Has("status") {
				o.setColumn(rec, "status", "inactive")
			}
		}
		if err := uow.Records().Save(ctx, rec); err != nil {
			_ = uow.Rollback()
			return err
		}
	} else {
		if err := uow.Records().HardDelete(ctx, rec); err != nil {
			_ = uow.Rollback()
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	o.afterWrite(ctx, "ENTITY_DELETED", req, req.ItemID)
	return nil
}

// Restore reactivates a soft-deleted record, honoring an entity-supplied
// eligibility check.
func (o *Orchestrator) Restore(ctx context.Context, req WriteRequest) error {
	reg, cfg, err := o.resolve(req.EntityType, entityconfig.OpRestore)
	if err != nil {
		return err
	}
	if !cfg.SoftDelete {
		return &apperrors.ValidationError{EntityType: req.EntityType, Reason: "restore requires soft delete"}
	}

	if restorer, ok := o.overrides.restorer(req.EntityType); ok {
		if err := restorer.RestoreEntity(ctx, o.overrideArgs(req)); err != nil {
			return err
		}
		o.afterWrite(ctx, "ENTITY_RESTORED", req, req.ItemID)
		return nil
	}

	if reg.ModelPrototype == nil {
		return &apperrors.ConfigurationError{EntityType: req.EntityType, Reason: "no model bound for generic restore"}
	}

	uow := o.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	rec, err := o.findScoped(ctx, uow, reg, cfg, req, true)
	if err != nil {
		_ = uow.Rollback()
		return err
	}

	if check, ok := o.overrides.restoreEligibility(req.EntityType); ok {
		if eligible, reason := check.CanRestore(ctx, rec, o.overrideArgs(req)); !eligible {
			_ = uow.Rollback()
			return &apperrors.BusinessRuleError{EntityType: req.EntityType, Reason: reason}
		}
	}

	o.setColumn(rec, "deleted_at", nil)
	o.setColumn(rec, "deleted_by", nil)
	if rec.Has("status") {
		o.setColumn(rec, "status", "active")
	}
	o.setColumn(rec, "updated_at", time.Now())
	o.setColumn(rec, "updated_by", req.Context.CallerID)

	if err := uow.Records().Save(ctx, rec); err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	o.afterWrite(ctx, "ENTITY_RESTORED", req, req.ItemID)
	return nil
}

// findScoped resolves the target record within the caller's tenant.
func (o *Orchestrator) findScoped(ctx context.Context, uow unitofwork.UnitOfWork, reg *registry.Registration, cfg *entityconfig.EntityConfiguration, req WriteRequest, deletedOnly bool) (*record.Record, error) {
	specs := []specification.Specification{
		specification.ByID{ID: req.ItemID},
		specification.TenantOwnedBy{TenantID: req.Context.TenantID},
	}
	if cfg.SoftDelete {
		if deletedOnly {
			specs = append(specs, specification.DeletedOnly{})
		} else {
			specs = append(specs, specification.NotDeleted{})
		}
	}
	rec, err := uow.Records().FindOne(ctx, reg.ModelPrototype, specs...)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &apperrors.NotFoundError{EntityType: req.EntityType, ID: req.ItemID.String()}
	}
	return rec, nil
}

func (o *Orchestrator) resolveLocality(ctx context.Context, rec *record.Record, req WriteRequest) error {
	if !rec.Has("branch_id") {
		return nil
	}
	// Explicit value wins, then the locality collaborator, then the
	// caller's context default.
	if raw, ok := req.Payload["branch_id"]; ok && raw != nil && raw != "" {
		o.setColumn(rec, "branch_id", raw)
		return nil
	}
	branch, err := o.locality.DefaultBranch(ctx, req.Context.CallerID, req.Context.TenantID)
	if err != nil {
		return err
	}
	if branch == nil {
		branch = req.Context.BranchID
	}
	if branch != nil {
		o.setColumn(rec, "branch_id", *branch)
	}
	return nil
}

func (o *Orchestrator) applyFields(rec *record.Record, cfg *entityconfig.EntityConfiguration, transformed, raw map[string]interface{}, visible func(*entityconfig.FieldDefinition) bool) {
	for i := range cfg.Fields {
		def := &cfg.Fields[i]
		if def.Virtual || def.Readonly || !rec.Has(def.Name) {
			continue
		}
		if !visible(def) {
			// Hidden-but-required fields still arrive in the raw payload.
			if def.Required {
				if v, ok := raw[def.Name]; ok {
					o.setColumn(rec, def.Name, v)
				}
			}
			continue
		}
		if v, ok := transformed[def.Name]; ok {
			o.setColumn(rec, def.Name, v)
			continue
		}
		if v, ok := raw[def.Name]; ok {
			o.setColumn(rec, def.Name, v)
		}
	}
}

func (o *Orchestrator) applyContainers(rec *record.Record, out *transform.Output) {
	for target, value := range out.Containers {
		if !rec.Has(target) {
			continue
		}
		if value == nil {
			o.setColumn(rec, target, nil)
			continue
		}
		o.setColumn(rec, target, value)
	}
}

func (o *Orchestrator) applyDefaults(rec *record.Record, cfg *entityconfig.EntityConfiguration, raw map[string]interface{}) {
	for column, value := range cfg.Defaults {
		if _, submitted := raw[column]; submitted {
			continue
		}
		if rec.Has(column) && rec.IsZero(column) {
			o.setColumn(rec, column, value)
		}
	}
}

// setColumn applies a value, degrading to a logged warning on coercion
// failures: one junk payload field must not fail the whole operation.
func (o *Orchestrator) setColumn(rec *record.Record, column string, value interface{}) {
	if !rec.Has(column) {
		return
	}
	if err := rec.Set(column, value); err != nil {
		o.log.Warn("crud", "column assignment skipped", map[string]interface{}{
			"column": column, "error": err.Error(),
		})
	}
}

func (o *Orchestrator) afterWrite(ctx context.Context, code string, req WriteRequest, id uuid.UUID) {
	if o.invalidator != nil {
		o.invalidator.InvalidateForEntity(ctx, req.EntityType, true)
	}
	if o.audit == nil {
		return
	}
	event := events.NewEntityAuditEvent(code, req.EntityType, id.String(), req.Context.TenantID.String(), req.Context.CallerID.String())
	if err := o.audit.Publish(ctx, event); err != nil {
		o.log.Warn("crud", "audit publish failed", map[string]interface{}{
			"entity_type": req.EntityType, "error": err.Error(),
		})
	}
}

func primaryKey(cfg *entityconfig.EntityConfiguration) string {
	if cfg.PrimaryKey != "" {
		return cfg.PrimaryKey
	}
	return "id"
}
