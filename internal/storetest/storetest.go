// Package storetest provides in-memory implementations of the store repositories for
// usecase and handler tests.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/transaction"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// Transactor runs fn directly. After-commit hooks fire immediately because no real
// transaction is bound to the context.
type Transactor struct {
	mu    sync.Mutex
	Calls int
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	t.Calls++
	t.mu.Unlock()
	return fn(ctx)
}

// Failures maps a method name to the error it should return.
type Failures map[string]error

func (f Failures) check(method string) error {
	if f == nil {
		return nil
	}
	return f[method]
}

type storedEntity struct {
	seq    int
	entity model.Entity
}

type EntityRepo struct {
	mu       sync.Mutex
	seq      int
	entities map[string]*storedEntity
	attrs    map[string]map[string]model.DynamicAttribute
	Fail     Failures
}

func NewEntityRepo() *EntityRepo {
	return &EntityRepo{
		entities: make(map[string]*storedEntity),
		attrs:    make(map[string]map[string]model.DynamicAttribute),
	}
}

func (r *EntityRepo) Create(_ context.Context, e *model.Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("Create"); err != nil {
		return err
	}
	if _, ok := r.entities[e.ID]; ok {
		return fmt.Errorf("duplicate entity id %s", e.ID)
	}
	r.seq++
	r.entities[e.ID] = &storedEntity{seq: r.seq, entity: *e}
	return nil
}

func (r *EntityRepo) FindByID(_ context.Context, id string) (*model.Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("FindByID"); err != nil {
		return nil, err
	}
	stored, ok := r.entities[id]
	if !ok {
		return nil, nil
	}
	e := stored.entity
	return &e, nil
}

func (r *EntityRepo) FindByType(_ context.Context, orgID, entityType string) ([]model.Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("FindByType"); err != nil {
		return nil, err
	}
	matched := r.filter(func(e model.Entity) bool {
		return e.OrganizationID == orgID && e.EntityType == entityType && e.IsActive
	})
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })
	return unwrap(matched), nil
}

func (r *EntityRepo) FindByAttribute(_ context.Context, orgID, entityType, field, value string) ([]model.Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("FindByAttribute"); err != nil {
		return nil, err
	}
	matched := r.filter(func(e model.Entity) bool {
		if e.OrganizationID != orgID || e.EntityType != entityType || !e.IsActive {
			return false
		}
		attr, ok := r.attrs[e.ID][field]
		return ok && attr.FieldValue == value
	})
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })
	return unwrap(matched), nil
}

func (r *EntityRepo) Update(_ context.Context, e *model.Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("Update"); err != nil {
		return err
	}
	stored, ok := r.entities[e.ID]
	if !ok || stored.entity.OrganizationID != e.OrganizationID {
		return nil
	}
	stored.entity.EntityName = e.EntityName
	stored.entity.EntityCode = e.EntityCode
	stored.entity.IsActive = e.IsActive
	stored.entity.UpdatedAt = e.UpdatedAt
	return nil
}

func (r *EntityRepo) UpsertAttributes(_ context.Context, attrs []model.DynamicAttribute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("UpsertAttributes"); err != nil {
		return err
	}
	for _, a := range attrs {
		if _, ok := r.entities[a.EntityID]; !ok {
			return fmt.Errorf("attribute %s references missing entity %s", a.FieldName, a.EntityID)
		}
		fields, ok := r.attrs[a.EntityID]
		if !ok {
			fields = make(map[string]model.DynamicAttribute)
			r.attrs[a.EntityID] = fields
		}
		if prev, ok := fields[a.FieldName]; ok {
			a.ID = prev.ID
			a.CreatedAt = prev.CreatedAt
		}
		fields[a.FieldName] = a
	}
	return nil
}

func (r *EntityRepo) FindAttributes(_ context.Context, entityID string) ([]model.DynamicAttribute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("FindAttributes"); err != nil {
		return nil, err
	}
	return r.attributesOf(entityID), nil
}

func (r *EntityRepo) FindAttributesByEntities(_ context.Context, entityIDs []string) ([]model.DynamicAttribute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("FindAttributesByEntities"); err != nil {
		return nil, err
	}
	out := []model.DynamicAttribute{}
	for _, id := range entityIDs {
		out = append(out, r.attributesOf(id)...)
	}
	return out, nil
}

func (r *EntityRepo) IncrementCounter(_ context.Context, orgID, entityID, field string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("IncrementCounter"); err != nil {
		return 0, err
	}
	fields, ok := r.attrs[entityID]
	if !ok {
		fields = make(map[string]model.DynamicAttribute)
		r.attrs[entityID] = fields
	}
	attr, ok := fields[field]
	current := 0
	if ok && attr.FieldValue != "" {
		n, err := strconv.Atoi(attr.FieldValue)
		if err != nil {
			return 0, err
		}
		current = n
	}
	if !ok {
		now := time.Now()
		attr = model.DynamicAttribute{
			BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
			OrganizationID: orgID,
			EntityID:       entityID,
			FieldName:      field,
			FieldType:      model.FieldTypeNumber,
		}
	}
	current++
	attr.FieldValue = strconv.Itoa(current)
	fields[field] = attr
	return current, nil
}

func (r *EntityRepo) CompareAndSetAttribute(_ context.Context, entityID, field, expected, next string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("CompareAndSetAttribute"); err != nil {
		return false, err
	}
	attr, ok := r.attrs[entityID][field]
	if !ok || attr.FieldValue != expected {
		return false, nil
	}
	attr.FieldValue = next
	r.attrs[entityID][field] = attr
	return true, nil
}

// Attribute returns the stored text of one attribute, for assertions.
func (r *EntityRepo) Attribute(entityID, field string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attr, ok := r.attrs[entityID][field]
	return attr.FieldValue, ok
}

// Count returns how many entities of a type exist, active or not.
func (r *EntityRepo) Count(entityType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, stored := range r.entities {
		if stored.entity.EntityType == entityType {
			n++
		}
	}
	return n
}

func (r *EntityRepo) filter(keep func(model.Entity) bool) []*storedEntity {
	var out []*storedEntity
	for _, stored := range r.entities {
		if keep(stored.entity) {
			out = append(out, stored)
		}
	}
	return out
}

func (r *EntityRepo) attributesOf(entityID string) []model.DynamicAttribute {
	fields := r.attrs[entityID]
	out := make([]model.DynamicAttribute, 0, len(fields))
	for _, a := range fields {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FieldName < out[j].FieldName })
	return out
}

func unwrap(stored []*storedEntity) []model.Entity {
	out := make([]model.Entity, 0, len(stored))
	for _, s := range stored {
		out = append(out, s.entity)
	}
	return out
}

type MetadataRepo struct {
	mu      sync.Mutex
	records []model.MetadataRecord
	Fail    Failures
}

func NewMetadataRepo() *MetadataRepo {
	return &MetadataRepo{}
}

func (r *MetadataRepo) Insert(_ context.Context, rec *model.MetadataRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("Insert"); err != nil {
		return err
	}
	r.records = append(r.records, *rec)
	return nil
}

func (r *MetadataRepo) Upsert(_ context.Context, rec *model.MetadataRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("Upsert"); err != nil {
		return err
	}
	for i := len(r.records) - 1; i >= 0; i-- {
		cur := &r.records[i]
		if cur.OrganizationID == rec.OrganizationID && cur.EntityType == rec.EntityType &&
			cur.EntityID == rec.EntityID && cur.MetadataType == rec.MetadataType &&
			cur.MetadataCategory == rec.MetadataCategory && cur.MetadataKey == rec.MetadataKey {
			rec.ID = cur.ID
			rec.CreatedAt = cur.CreatedAt
			*cur = *rec
			return nil
		}
	}
	r.records = append(r.records, *rec)
	return nil
}

func (r *MetadataRepo) FindBySubject(_ context.Context, orgID, subjectType, subjectID, metadataType string) ([]model.MetadataRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("FindBySubject"); err != nil {
		return nil, err
	}
	out := []model.MetadataRecord{}
	for i := len(r.records) - 1; i >= 0; i-- {
		rec := r.records[i]
		if rec.OrganizationID == orgID && rec.EntityType == subjectType && rec.EntityID == subjectID &&
			(metadataType == "" || rec.MetadataType == metadataType) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *MetadataRepo) FindLatest(_ context.Context, orgID, subjectType, subjectID, metadataType, category, key string) (*model.MetadataRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("FindLatest"); err != nil {
		return nil, err
	}
	for i := len(r.records) - 1; i >= 0; i-- {
		rec := r.records[i]
		if rec.OrganizationID == orgID && rec.EntityType == subjectType && rec.EntityID == subjectID &&
			rec.MetadataType == metadataType && rec.MetadataCategory == category && rec.MetadataKey == key {
			return &rec, nil
		}
	}
	return nil, nil
}

// Records returns every stored record of a metadata type, oldest first.
func (r *MetadataRepo) Records(metadataType string) []model.MetadataRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.MetadataRecord
	for _, rec := range r.records {
		if rec.MetadataType == metadataType {
			out = append(out, rec)
		}
	}
	return out
}

type TransactionRepo struct {
	mu      sync.Mutex
	headers map[string]model.UniversalTransaction
	lines   map[string][]model.TransactionLine
	// Collisions makes the next N CreateHeader calls report a taken number.
	Collisions int
	Fail       Failures
}

func NewTransactionRepo() *TransactionRepo {
	return &TransactionRepo{
		headers: make(map[string]model.UniversalTransaction),
		lines:   make(map[string][]model.TransactionLine),
	}
}

func (r *TransactionRepo) CreateHeader(_ context.Context, tx *model.UniversalTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("CreateHeader"); err != nil {
		return err
	}
	if r.Collisions > 0 {
		r.Collisions--
		return transaction.ErrDuplicateNumber
	}
	for _, h := range r.headers {
		if h.OrganizationID != tx.OrganizationID {
			continue
		}
		if h.TransactionNumber == tx.TransactionNumber {
			return transaction.ErrDuplicateNumber
		}
		if tx.TransactionType == model.TransactionTypeOrder && h.TransactionType == model.TransactionTypeOrder &&
			h.SourceEntityID != nil && tx.SourceEntityID != nil && *h.SourceEntityID == *tx.SourceEntityID {
			return transaction.ErrDuplicateSource
		}
	}
	stored := *tx
	stored.Lines = nil
	r.headers[tx.ID] = stored
	return nil
}

func (r *TransactionRepo) AppendLines(_ context.Context, lines []model.TransactionLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("AppendLines"); err != nil {
		return err
	}
	for _, l := range lines {
		if _, ok := r.headers[l.TransactionID]; !ok {
			return fmt.Errorf("line references missing transaction %s", l.TransactionID)
		}
		for _, existing := range r.lines[l.TransactionID] {
			if existing.LineOrder == l.LineOrder {
				return fmt.Errorf("duplicate line order %d", l.LineOrder)
			}
		}
		r.lines[l.TransactionID] = append(r.lines[l.TransactionID], l)
	}
	return nil
}

func (r *TransactionRepo) UpdateStatus(_ context.Context, id string, status model.TransactionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("UpdateStatus"); err != nil {
		return err
	}
	h, ok := r.headers[id]
	if !ok {
		return transaction.ErrNotFound
	}
	h.Status = status
	r.headers[id] = h
	return nil
}

func (r *TransactionRepo) CompareAndSetStatus(_ context.Context, id string, expected, next model.TransactionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("CompareAndSetStatus"); err != nil {
		return err
	}
	h, ok := r.headers[id]
	if !ok || h.Status != expected {
		return transaction.ErrStatusMismatch
	}
	h.Status = next
	r.headers[id] = h
	return nil
}

func (r *TransactionRepo) UpdateDetails(_ context.Context, id string, details types.JSONText) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("UpdateDetails"); err != nil {
		return err
	}
	h, ok := r.headers[id]
	if !ok {
		return transaction.ErrNotFound
	}
	h.Details = details
	r.headers[id] = h
	return nil
}

func (r *TransactionRepo) FindByID(_ context.Context, id string) (*model.UniversalTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("FindByID"); err != nil {
		return nil, err
	}
	h, ok := r.headers[id]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (r *TransactionRepo) FindLines(_ context.Context, transactionID string) ([]model.TransactionLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("FindLines"); err != nil {
		return nil, err
	}
	out := append([]model.TransactionLine{}, r.lines[transactionID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].LineOrder < out[j].LineOrder })
	return out, nil
}

func (r *TransactionRepo) FindBySourceEntity(_ context.Context, orgID, txType, sourceEntityID string) (*model.UniversalTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("FindBySourceEntity"); err != nil {
		return nil, err
	}
	for _, h := range r.headers {
		if h.OrganizationID == orgID && h.TransactionType == txType && h.SourceEntityID != nil && *h.SourceEntityID == sourceEntityID {
			return &h, nil
		}
	}
	return nil, nil
}

func (r *TransactionRepo) FindByType(_ context.Context, orgID, txType string, limit int) ([]model.UniversalTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("FindByType"); err != nil {
		return nil, err
	}
	out := r.matching(func(h model.UniversalTransaction) bool {
		return h.OrganizationID == orgID && h.TransactionType == txType
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *TransactionRepo) FindByDateRange(_ context.Context, orgID string, start, end time.Time, txType string) ([]model.UniversalTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.Fail.check("FindByDateRange"); err != nil {
		return nil, err
	}
	return r.matching(func(h model.UniversalTransaction) bool {
		return h.OrganizationID == orgID &&
			!h.TransactionDate.Before(start) && h.TransactionDate.Before(end) &&
			(txType == "" || h.TransactionType == txType)
	}), nil
}

// Count returns the number of stored headers of a type.
func (r *TransactionRepo) Count(txType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, h := range r.headers {
		if h.TransactionType == txType {
			n++
		}
	}
	return n
}

// Put stores a header directly, bypassing uniqueness checks. Used to seed analytics.
func (r *TransactionRepo) Put(tx model.UniversalTransaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.headers[tx.ID] = tx
}

func (r *TransactionRepo) matching(keep func(model.UniversalTransaction) bool) []model.UniversalTransaction {
	out := []model.UniversalTransaction{}
	for _, h := range r.headers {
		if keep(h) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TransactionDate.After(out[j].TransactionDate) })
	return out
}
