package crud

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"clinic-erp-be/internal/entityconfig"
	"clinic-erp-be/internal/model"
	"clinic-erp-be/internal/pkg/apperrors"
	"clinic-erp-be/internal/pkg/logger"
	"clinic-erp-be/internal/record"
	"clinic-erp-be/internal/registry"
	"clinic-erp-be/internal/repository/contract"
	"clinic-erp-be/internal/repository/specification"
	"clinic-erp-be/internal/repository/unitofwork"
	"clinic-erp-be/internal/transform"
	"clinic-erp-be/pkg/events"
)

// --- fakes ---

type fakeRepo struct {
	insertErr error
	saveErr   error
	findRec   *record.Record
	findErr   error

	inserted []*record.Record
	saved    []*record.Record
	deleted  []*record.Record
}

func (f *fakeRepo) Insert(ctx context.Context, rec *record.Record) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, rec)
	return nil
}

func (f *fakeRepo) Save(ctx context.Context, rec *record.Record) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, rec)
	return nil
}

func (f *fakeRepo) FindOne(ctx context.Context, proto record.Model, specs ...specification.Specification) (*record.Record, error) {
	return f.findRec, f.findErr
}

func (f *fakeRepo) HardDelete(ctx context.Context, rec *record.Record) error {
	f.deleted = append(f.deleted, rec)
	return nil
}

type fakeUOW struct {
	repo       *fakeRepo
	begun      bool
	committed  bool
	rolledBack bool
}

func (f *fakeUOW) Begin(ctx context.Context) error { f.begun = true; return nil }
func (f *fakeUOW) Commit() error                   { f.committed = true; return nil }
func (f *fakeUOW) Rollback() error                 { f.rolledBack = true; return nil }
func (f *fakeUOW) Records() contract.RecordRepository {
	return f.repo
}

type fakeFactory struct {
	uow   *fakeUOW
	calls int
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	f.calls++
	return f.uow
}

type fakeLocality struct {
	branch *uuid.UUID
	err    error
	calls  int
}

func (f *fakeLocality) DefaultBranch(ctx context.Context, callerID, tenantID uuid.UUID) (*uuid.UUID, error) {
	f.calls++
	return f.branch, f.err
}

type fakeInvalidator struct {
	entityTypes []string
}

func (f *fakeInvalidator) InvalidateForEntity(ctx context.Context, entityType string, cascade bool) {
	f.entityTypes = append(f.entityTypes, entityType)
}

type fakeAudit struct {
	codes []string
}

func (f *fakeAudit) Publish(ctx context.Context, event events.Event) error {
	f.codes = append(f.codes, event.EventType())
	return nil
}

// --- fixture ---

type fixture struct {
	orch        *Orchestrator
	factory     *fakeFactory
	repo        *fakeRepo
	locality    *fakeLocality
	invalidator *fakeInvalidator
	audit       *fakeAudit
	overrides   *OverrideTable
}

func supplierTestConfig() *entityconfig.EntityConfiguration {
	return &entityconfig.EntityConfiguration{
		DisplayName: "Supplier",
		PrimaryKey:  "id",
		Fields: []entityconfig.FieldDefinition{
			{Name: "company_name", Type: entityconfig.FieldText, Required: true, ShowInCreate: true, ShowInEdit: true},
			{Name: "contact_person", Type: entityconfig.FieldText, ShowInCreate: true, ShowInEdit: true},
			{Name: "tax_number", Type: entityconfig.FieldText, Required: true},
			{Name: "phone", Type: entityconfig.FieldText, Virtual: true, ShowInCreate: true, ShowInEdit: true},
			{Name: "mobile", Type: entityconfig.FieldText, Virtual: true, ShowInCreate: true, ShowInEdit: true},
		},
		CreateEnabled: true,
		EditEnabled:   true,
		DeleteEnabled: true,
		SoftDelete:    true,
		Defaults:      map[string]interface{}{"status": "active"},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	entities := registry.New()
	entities.MustRegister(registry.Registration{
		EntityType:     "suppliers",
		Category:       entityconfig.CategoryMaster,
		ConfigBuilder:  supplierTestConfig,
		ModelPrototype: model.Supplier{},
		Enabled:        true,
	})
	entities.MustRegister(registry.Registration{
		EntityType:     "supplier_payments",
		Category:       entityconfig.CategoryTransaction,
		ModelPrototype: model.SupplierPayment{},
		Enabled:        true,
		ConfigBuilder: func() *entityconfig.EntityConfiguration {
			return &entityconfig.EntityConfiguration{CreateEnabled: true, EditEnabled: true}
		},
	})
	entities.MustRegister(registry.Registration{
		EntityType:    "archived_things",
		Category:      entityconfig.CategoryMaster,
		Enabled:       false,
		ConfigBuilder: func() *entityconfig.EntityConfiguration { return &entityconfig.EntityConfiguration{} },
	})
	entities.Freeze()

	repo := &fakeRepo{}
	uow := &fakeUOW{repo: repo}
	factory := &fakeFactory{uow: uow}
	loc := &fakeLocality{}
	inv := &fakeInvalidator{}
	aud := &fakeAudit{}
	overrides := NewOverrideTable()

	orch := NewOrchestrator(
		entities,
		entityconfig.NewLoader(entities, logger.Nop()),
		transform.New(logger.Nop()),
		factory,
		overrides,
		loc,
		inv,
		aud,
		logger.Nop(),
	)
	return &fixture{
		orch: orch, factory: factory, repo: repo,
		locality: loc, invalidator: inv, audit: aud, overrides: overrides,
	}
}

func writeReq(entityType string, payload map[string]interface{}) WriteRequest {
	return WriteRequest{
		EntityType: entityType,
		Payload:    payload,
		Context: RequestContext{
			TenantID: uuid.New(),
			CallerID: uuid.New(),
		},
	}
}

// --- create ---

func TestCreateGenericPath(t *testing.T) {
	f := newFixture(t)
	branch := uuid.New()
	f.locality.branch = &branch

	req := writeReq("suppliers", map[string]interface{}{
		"company_name": "Acme Medical",
		"phone":        "021-555",
		"tax_number":   "TX-1", // required but hidden on create
		"id":           "ffffffff-ffff-ffff-ffff-ffffffffffff",
	})
	id, err := f.orch.Create(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	require.Len(t, f.repo.inserted, 1)
	s := f.repo.inserted[0].Model().(*model.Supplier)

	// server-generated identity wins over the submitted one
	assert.Equal(t, id, s.Id)
	assert.Equal(t, req.Context.TenantID, s.TenantId)
	assert.Equal(t, "Acme Medical", s.CompanyName)
	require.NotNil(t, s.TaxNumber)
	assert.Equal(t, "TX-1", *s.TaxNumber)
	require.NotNil(t, s.BranchId)
	assert.Equal(t, branch, *s.BranchId)
	assert.Equal(t, "active", s.Status)
	assert.Equal(t, "021-555", s.ContactInfo["phone"])
	require.NotNil(t, s.CreatedBy)
	assert.Equal(t, req.Context.CallerID, *s.CreatedBy)

	assert.True(t, f.factory.uow.committed)
	assert.Equal(t, []string{"suppliers"}, f.invalidator.entityTypes)
	assert.Equal(t, []string{"ENTITY_CREATED"}, f.audit.codes)
}

func TestCreatePayloadBranchWins(t *testing.T) {
	f := newFixture(t)
	fallback := uuid.New()
	f.locality.branch = &fallback
	explicit := uuid.New()

	_, err := f.orch.Create(context.Background(), writeReq("suppliers", map[string]interface{}{
		"company_name": "Acme",
		"branch_id":    explicit.String(),
	}))
	require.NoError(t, err)

	s := f.repo.inserted[0].Model().(*model.Supplier)
	require.NotNil(t, s.BranchId)
	assert.Equal(t, explicit, *s.BranchId)
	assert.Zero(t, f.locality.calls)
}

func TestCreateFallsBackToContextBranch(t *testing.T) {
	f := newFixture(t)
	ctxBranch := uuid.New()

	req := writeReq("suppliers", map[string]interface{}{"company_name": "Acme"})
	req.Context.BranchID = &ctxBranch

	_, err := f.orch.Create(context.Background(), req)
	require.NoError(t, err)

	s := f.repo.inserted[0].Model().(*model.Supplier)
	require.NotNil(t, s.BranchId)
	assert.Equal(t, ctxBranch, *s.BranchId)
	assert.Equal(t, 1, f.locality.calls)
}

func TestCreateMissingRequiredColumnSurfacesFromStore(t *testing.T) {
	f := newFixture(t)
	f.repo.insertErr = apperrors.TranslateDBError("suppliers", &pgconn.PgError{
		Code: "23502", ColumnName: "company_name",
	})

	_, err := f.orch.Create(context.Background(), writeReq("suppliers", map[string]interface{}{}))

	var missing *apperrors.MissingRequiredFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "company_name", missing.Column)
	assert.True(t, f.factory.uow.rolledBack)
	assert.False(t, f.factory.uow.committed)
	assert.Empty(t, f.invalidator.entityTypes)
	assert.Empty(t, f.audit.codes)
}

func TestCreateRejectedForTransactionEntity(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.Create(context.Background(), writeReq("supplier_payments", map[string]interface{}{
		"amount": 100,
	}))

	var validation *apperrors.ValidationError
	require.ErrorAs(t, err, &validation)
	// rejected before any store interaction
	assert.Zero(t, f.factory.calls)
}

func TestCreateUnknownAndDisabledEntities(t *testing.T) {
	f := newFixture(t)

	var cfgErr *apperrors.ConfigurationError
	_, err := f.orch.Create(context.Background(), writeReq("ghosts", nil))
	require.ErrorAs(t, err, &cfgErr)

	_, err = f.orch.Create(context.Background(), writeReq("archived_things", nil))
	require.ErrorAs(t, err, &cfgErr)
	assert.Zero(t, f.factory.calls)
}

// --- override dispatch ---

type creatorOverride struct {
	id    uuid.UUID
	args  OverrideArgs
	calls int
}

func (c *creatorOverride) CreateEntity(ctx context.Context, args OverrideArgs) (uuid.UUID, error) {
	c.calls++
	c.args = args
	return c.id, nil
}

func TestCreateOverrideDispatch(t *testing.T) {
	f := newFixture(t)
	override := &creatorOverride{id: uuid.New()}
	f.overrides.Register("suppliers", override)

	payload := map[string]interface{}{"company_name": "Acme"}
	id, err := f.orch.Create(context.Background(), writeReq("suppliers", payload))
	require.NoError(t, err)
	assert.Equal(t, override.id, id)
	assert.Equal(t, 1, override.calls)
	assert.Equal(t, "supplier_data", override.args.PayloadKey)

	// the generic path never ran
	assert.Zero(t, f.factory.calls)
	// post-write hooks still did
	assert.Equal(t, []string{"suppliers"}, f.invalidator.entityTypes)
	assert.Equal(t, []string{"ENTITY_CREATED"}, f.audit.codes)

	// capability lookup is cached: a second create reuses the same path
	_, err = f.orch.Create(context.Background(), writeReq("suppliers", payload))
	require.NoError(t, err)
	assert.Equal(t, 2, override.calls)
}

// --- update ---

func TestUpdateMergesContainers(t *testing.T) {
	f := newFixture(t)
	existing := &model.Supplier{
		Id:          uuid.New(),
		CompanyName: "Acme",
		ContactInfo: datatypes.JSONMap{"phone": "021-old", "mobile": "0812-9"},
	}
	f.repo.findRec = record.Wrap(existing)

	req := writeReq("suppliers", map[string]interface{}{"phone": "021-new"})
	req.ItemID = existing.Id
	require.NoError(t, f.orch.Update(context.Background(), req))

	require.Len(t, f.repo.saved, 1)
	s := f.repo.saved[0].Model().(*model.Supplier)
	assert.Equal(t, "021-new", s.ContactInfo["phone"])
	assert.Equal(t, "0812-9", s.ContactInfo["mobile"])
	require.NotNil(t, s.UpdatedBy)
	assert.Equal(t, req.Context.CallerID, *s.UpdatedBy)
	assert.True(t, f.factory.uow.committed)
	assert.Equal(t, []string{"ENTITY_UPDATED"}, f.audit.codes)
}

func TestUpdateMissingRecord(t *testing.T) {
	f := newFixture(t)
	f.repo.findRec = nil

	req := writeReq("suppliers", map[string]interface{}{"company_name": "X"})
	req.ItemID = uuid.New()
	err := f.orch.Update(context.Background(), req)

	var notFound *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.True(t, f.factory.uow.rolledBack)
	assert.Empty(t, f.audit.codes)
}

// --- delete / restore ---

func TestDeleteSoftMarksRecord(t *testing.T) {
	f := newFixture(t)
	existing := &model.Supplier{Id: uuid.New(), CompanyName: "Acme", Status: "active"}
	f.repo.findRec = record.Wrap(existing)

	req := writeReq("suppliers", nil)
	req.ItemID = existing.Id
	require.NoError(t, f.orch.Delete(context.Background(), req))

	require.Len(t, f.repo.saved, 1)
	s := f.repo.saved[0].Model().(*model.Supplier)
	require.NotNil(t, s.DeletedAt)
	assert.WithinDuration(t, time.Now(), *s.DeletedAt, time.Minute)
	require.NotNil(t, s.DeletedBy)
	assert.Equal(t, req.Context.CallerID, *s.DeletedBy)
	assert.Equal(t, "inactive", s.Status)
	// soft delete never removes the row
	assert.Empty(t, f.repo.deleted)
	assert.Equal(t, []string{"ENTITY_DELETED"}, f.audit.codes)
}

type restoreGate struct {
	eligible bool
	reason   string
}

func (g *restoreGate) CanRestore(ctx context.Context, rec *record.Record, args OverrideArgs) (bool, string) {
	return g.eligible, g.reason
}

func TestRestoreClearsMarkers(t *testing.T) {
	f := newFixture(t)
	then := time.Now().Add(-time.Hour)
	deletedBy := uuid.New()
	existing := &model.Supplier{
		Id: uuid.New(), CompanyName: "Acme", Status: "inactive",
		DeletedAt: &then, DeletedBy: &deletedBy,
	}
	f.repo.findRec = record.Wrap(existing)

	req := writeReq("suppliers", nil)
	req.ItemID = existing.Id
	require.NoError(t, f.orch.Restore(context.Background(), req))

	require.Len(t, f.repo.saved, 1)
	s := f.repo.saved[0].Model().(*model.Supplier)
	assert.Nil(t, s.DeletedAt)
	assert.Nil(t, s.DeletedBy)
	assert.Equal(t, "active", s.Status)
	assert.Equal(t, []string{"ENTITY_RESTORED"}, f.audit.codes)
}

func TestRestoreBlockedByEligibility(t *testing.T) {
	f := newFixture(t)
	f.overrides.Register("suppliers", &restoreGate{eligible: false, reason: "an active supplier with this name exists"})
	then := time.Now().Add(-time.Hour)
	f.repo.findRec = record.Wrap(&model.Supplier{
		Id: uuid.New(), CompanyName: "Acme", DeletedAt: &then,
	})

	req := writeReq("suppliers", nil)
	req.ItemID = uuid.New()
	err := f.orch.Restore(context.Background(), req)

	var rule *apperrors.BusinessRuleError
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "an active supplier with this name exists", rule.Reason)
	assert.True(t, f.factory.uow.rolledBack)
	assert.Empty(t, f.repo.saved)
	assert.Empty(t, f.audit.codes)
}

func TestFindErrorPassesThrough(t *testing.T) {
	f := newFixture(t)
	f.repo.findErr = errors.New("connection reset")

	req := writeReq("suppliers", nil)
	req.ItemID = uuid.New()
	err := f.orch.Delete(context.Background(), req)
	require.Error(t, err)
	assert.True(t, f.factory.uow.rolledBack)
}

func TestPayloadKey(t *testing.T) {
	assert.Equal(t, "supplier_data", PayloadKey("suppliers"))
	assert.Equal(t, "patient_data", PayloadKey("patients"))
	assert.Equal(t, "expense_category_data", PayloadKey("expense_categories"))
}
