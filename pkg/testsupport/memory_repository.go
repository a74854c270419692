package testsupport

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-inventory-cache/catalog"
)

// callTracker counts calls per method and injects failures.
type callTracker struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
}

func (c *callTracker) recordCall(method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[method]++
	if err := c.fail[method]; err != nil {
		return catalog.NewRepositoryError(method, err)
	}
	return nil
}

// Calls returns how many times method was invoked.
func (c *callTracker) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// ResetCalls clears the counters.
func (c *callTracker) ResetCalls() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = make(map[string]int)
}

// FailOn makes method return err wrapped as a repository error. A nil err
// clears the failure.
func (c *callTracker) FailOn(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.fail, method)
		return
	}
	if c.fail == nil {
		c.fail = make(map[string]error)
	}
	c.fail[method] = err
}

// CategoryRepository is an in-memory catalog.CategoryRepository.
type CategoryRepository struct {
	callTracker
	mu    sync.RWMutex
	items map[uuid.UUID]catalog.Category
}

var _ catalog.CategoryRepository = (*CategoryRepository)(nil)

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{
		items: make(map[uuid.UUID]catalog.Category),
	}
}

func (r *CategoryRepository) GetAll(ctx context.Context) ([]catalog.Category, error) {
	if err := r.recordCall("GetAll"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]catalog.Category, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	if err := r.recordCall("GetByID"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &c, nil
}

func (r *CategoryRepository) Add(ctx context.Context, category *catalog.Category) error {
	if err := r.recordCall("Add"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[category.ID] = *category
	return nil
}

func (r *CategoryRepository) lookup(id uuid.UUID) *catalog.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return nil
	}
	return &c
}

// ProductRepository is an in-memory catalog.ProductRepository. Listings are
// ordered by name and carry their category when one is known.
type ProductRepository struct {
	callTracker
	mu         sync.RWMutex
	items      map[uuid.UUID]catalog.Product
	categories *CategoryRepository
}

var _ catalog.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository returns an empty repository that resolves categories
// through categories, which may be nil.
func NewProductRepository(categories *CategoryRepository) *ProductRepository {
	return &ProductRepository{
		items:      make(map[uuid.UUID]catalog.Product),
		categories: categories,
	}
}

func (r *ProductRepository) GetPaged(ctx context.Context, pageNumber, pageSize int) ([]catalog.Product, int, error) {
	if err := r.recordCall("GetPaged"); err != nil {
		return nil, 0, err
	}
	all := r.filter(func(catalog.Product) bool { return true })
	start := (pageNumber - 1) * pageSize
	if start >= len(all) {
		return []catalog.Product{}, len(all), nil
	}
	end := min(start+pageSize, len(all))
	return all[start:end], len(all), nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	if err := r.recordCall("GetByID"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	p, ok := r.items[id]
	r.mu.RUnlock()
	if !ok {
		return nil, catalog.ErrNotFound
	}
	p = r.withCategory(p)
	return &p, nil
}

func (r *ProductRepository) GetByCategoryID(ctx context.Context, categoryID uuid.UUID) ([]catalog.Product, error) {
	if err := r.recordCall("GetByCategoryID"); err != nil {
		return nil, err
	}
	return r.filter(func(p catalog.Product) bool { return p.CategoryID == categoryID }), nil
}

func (r *ProductRepository) GetLowStock(ctx context.Context, threshold int) ([]catalog.Product, error) {
	if err := r.recordCall("GetLowStock"); err != nil {
		return nil, err
	}
	return r.filter(func(p catalog.Product) bool { return p.IsLowStock(threshold) }), nil
}

func (r *ProductRepository) Search(ctx context.Context, term string) ([]catalog.Product, error) {
	if err := r.recordCall("Search"); err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	return r.filter(func(p catalog.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), term)
	}), nil
}

func (r *ProductRepository) GetTotalCount(ctx context.Context) (int, error) {
	if err := r.recordCall("GetTotalCount"); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items), nil
}

func (r *ProductRepository) GetTotalStockValue(ctx context.Context) (float64, error) {
	if err := r.recordCall("GetTotalStockValue"); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var total float64
	for _, p := range r.items {
		total += p.StockValue()
	}
	return total, nil
}

func (r *ProductRepository) GetCountByCategory(ctx context.Context) (map[uuid.UUID]int, error) {
	if err := r.recordCall("GetCountByCategory"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[uuid.UUID]int)
	for _, p := range r.items {
		counts[p.CategoryID]++
	}
	return counts, nil
}

func (r *ProductRepository) Add(ctx context.Context, product *catalog.Product) error {
	if err := r.recordCall("Add"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *product
	stored.Category = nil
	r.items[product.ID] = stored
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	if err := r.recordCall("Update"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[product.ID]; !ok {
		return catalog.ErrNotFound
	}
	stored := *product
	stored.Category = nil
	r.items[product.ID] = stored
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, product *catalog.Product) error {
	if err := r.recordCall("Delete"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[product.ID]; !ok {
		return catalog.ErrNotFound
	}
	delete(r.items, product.ID)
	return nil
}

func (r *ProductRepository) filter(keep func(catalog.Product) bool) []catalog.Product {
	r.mu.RLock()
	out := make([]catalog.Product, 0, len(r.items))
	for _, p := range r.items {
		if keep(p) {
			out = append(out, p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].Name < out[j].Name
	})
	for i := range out {
		out[i] = r.withCategory(out[i])
	}
	return out
}

func (r *ProductRepository) withCategory(p catalog.Product) catalog.Product {
	if r.categories != nil {
		p.Category = r.categories.lookup(p.CategoryID)
	}
	return p
}
