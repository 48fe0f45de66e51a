package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"rewardshub-backend/internal/domain"
	"rewardshub-backend/internal/ports"
)

// In-memory stores implementing the ports, mirroring the per-method
// atomicity the real repositories provide.

type fakeSeq struct {
	mu       sync.Mutex
	counters map[string]int64
}

func newFakeSeq() *fakeSeq {
	return &fakeSeq{counters: map[string]int64{}}
}

func (f *fakeSeq) Next(_ context.Context, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters[name]++
	return f.counters[name], nil
}

type fakeLedger struct {
	mu       sync.Mutex
	balances map[int64]*domain.PointsBalance
	entries  []domain.Transaction
	seq      *fakeSeq

	creditErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		balances: map[int64]*domain.PointsBalance{},
		seq:      newFakeSeq(),
	}
}

func (f *fakeLedger) Balance(_ context.Context, employeeID int64) (*domain.PointsBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.balances[employeeID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeLedger) record(employeeID int64, description string, credited bool, amount, after int64) *domain.Transaction {
	id, _ := f.seq.Next(context.Background(), ports.SeqTransactions)
	t := domain.Transaction{
		ID:            id,
		TransactionID: id,
		EmployeeID:    employeeID,
		Description:   description,
		IsCredited:    credited,
		Amount:        amount,
		BalanceAfter:  after,
		CreatedAt:     time.Now(),
	}
	f.entries = append(f.entries, t)
	return &t
}

func (f *fakeLedger) Credit(_ context.Context, employeeID, amount int64, description string) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.creditErr != nil {
		return nil, f.creditErr
	}
	b, ok := f.balances[employeeID]
	if !ok {
		b = &domain.PointsBalance{EmployeeID: employeeID}
		f.balances[employeeID] = b
	}
	b.Total += amount
	b.Available = b.Total - b.Redeemed
	return f.record(employeeID, description, true, amount, b.Available), nil
}

func (f *fakeLedger) Debit(_ context.Context, employeeID, amount int64, description string) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.balances[employeeID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if b.Available < amount {
		return nil, ports.ErrInsufficientBalance
	}
	b.Redeemed += amount
	b.Available = b.Total - b.Redeemed
	return f.record(employeeID, description, false, amount, b.Available), nil
}

func (f *fakeLedger) Refund(_ context.Context, employeeID, amount int64, description string) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.balances[employeeID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	b.Redeemed -= amount
	b.Available = b.Total - b.Redeemed
	return f.record(employeeID, description, true, amount, b.Available), nil
}

func (f *fakeLedger) ExpireAvailable(_ context.Context, employeeID int64, description string) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.balances[employeeID]
	if !ok || b.Available <= 0 {
		return nil, nil
	}
	amount := b.Available
	b.Redeemed += amount
	b.Available = 0
	return f.record(employeeID, description, false, amount, 0), nil
}

func (f *fakeLedger) Transactions(_ context.Context, employeeID int64, sortAsc bool) ([]domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Transaction
	for _, t := range f.entries {
		if t.EmployeeID == employeeID {
			out = append(out, t)
		}
	}
	if !sortAsc {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

type fakeOrders struct {
	mu      sync.Mutex
	orders  map[int64]*domain.Order
	history map[int64][]domain.OrderHistoryEntry

	products  *fakeCatalog
	employees *fakeEmployees
}

func newFakeOrders(products *fakeCatalog, employees *fakeEmployees) *fakeOrders {
	return &fakeOrders{
		orders:    map[int64]*domain.Order{},
		history:   map[int64][]domain.OrderHistoryEntry{},
		products:  products,
		employees: employees,
	}
}

func (f *fakeOrders) Create(_ context.Context, in ports.CreateOrderInput) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := &domain.Order{
		ID:            in.OrderID,
		OrderID:       in.OrderID,
		EmployeeID:    in.EmployeeID,
		ProductID:     in.ProductID,
		Quantity:      in.Quantity,
		Customisation: in.Customisation,
		TransactionID: in.TransactionID,
		CurrentStatus: in.Initial.Status,
		CreatedAt:     time.Now(),
	}
	f.orders[in.OrderID] = o
	f.history[in.OrderID] = []domain.OrderHistoryEntry{in.Initial}
	copied := *o
	return &copied, nil
}

func (f *fakeOrders) Get(ctx context.Context, orderID int64) (*ports.OrderDetails, error) {
	f.mu.Lock()
	o, ok := f.orders[orderID]
	if !ok {
		f.mu.Unlock()
		return nil, ports.ErrNotFound
	}
	order := *o
	history := append([]domain.OrderHistoryEntry(nil), f.history[orderID]...)
	f.mu.Unlock()

	product, err := f.products.ByID(ctx, order.ProductID)
	if err != nil {
		return nil, err
	}
	employee, err := f.employees.ByEmployeeID(ctx, order.EmployeeID)
	if err != nil {
		return nil, err
	}
	return &ports.OrderDetails{
		Order:    order,
		Product:  *product,
		Employee: *employee,
		History:  history,
	}, nil
}

func (f *fakeOrders) AppendStatus(_ context.Context, orderID int64, from domain.OrderStatus, entry domain.OrderHistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok || o.CurrentStatus != from {
		return ports.ErrNotFound
	}
	o.CurrentStatus = entry.Status
	f.history[orderID] = append(f.history[orderID], entry)
	return nil
}

func (f *fakeOrders) ForEmployee(ctx context.Context, employeeID int64, transactionID *int64) ([]ports.OrderDetails, error) {
	f.mu.Lock()
	var ids []int64
	for id, o := range f.orders {
		if o.EmployeeID != employeeID {
			continue
		}
		if transactionID != nil && o.TransactionID != *transactionID {
			continue
		}
		ids = append(ids, id)
	}
	f.mu.Unlock()

	var out []ports.OrderDetails
	for _, id := range ids {
		d, err := f.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeOrders) Matching(ctx context.Context, filters ports.OrderFilters) ([]ports.OrderDetails, error) {
	f.mu.Lock()
	var ids []int64
	for id := range f.orders {
		ids = append(ids, id)
	}
	f.mu.Unlock()

	var out []ports.OrderDetails
	for _, id := range ids {
		d, err := f.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if filters.EmployeeID != nil && d.Order.EmployeeID != *filters.EmployeeID {
			continue
		}
		if len(filters.Statuses) > 0 && !statusIn(d.Order.CurrentStatus, filters.Statuses) {
			continue
		}
		if len(filters.Locations) > 0 && !stringIn(d.Employee.Location, filters.Locations) {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func statusIn(s domain.OrderStatus, values []domain.OrderStatus) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

func stringIn(s string, values []string) bool {
	for _, v := range values {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func (f *fakeOrders) StatusCounts(_ context.Context) (map[domain.OrderStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[domain.OrderStatus]int64{}
	for _, o := range f.orders {
		counts[o.CurrentStatus]++
	}
	return counts, nil
}

func (f *fakeOrders) HasDeliveredOrder(_ context.Context, employeeID, productID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.EmployeeID == employeeID && o.ProductID == productID && o.CurrentStatus == domain.StatusDelivered {
			return true, nil
		}
	}
	return false, nil
}

type fakeCatalog struct {
	mu       sync.Mutex
	products map[int64]domain.Product
	sizes    []string
	colors   []string
	seq      *fakeSeq
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: map[int64]domain.Product{},
		sizes:    []string{"S", "M", "L"},
		colors:   []string{"Black", "White"},
		seq:      newFakeSeq(),
	}
}

func (f *fakeCatalog) add(p domain.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ProductID] = p
}

func (f *fakeCatalog) ByID(_ context.Context, productID int64) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &p, nil
}

func (f *fakeCatalog) List(_ context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Product
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalog) Create(ctx context.Context, title string, rewardPoints int64, isCustomisable bool, imageURL string) (*domain.Product, error) {
	id, _ := f.seq.Next(ctx, ports.SeqProducts)
	p := domain.Product{
		ID:             id,
		ProductID:      id,
		Title:          title,
		RewardPoints:   rewardPoints,
		IsCustomisable: isCustomisable,
		ImageURL:       imageURL,
		CreatedAt:      time.Now(),
	}
	f.add(p)
	return &p, nil
}

func (f *fakeCatalog) Sizes(_ context.Context) ([]string, error)  { return f.sizes, nil }
func (f *fakeCatalog) Colors(_ context.Context) ([]string, error) { return f.colors, nil }

type fakeCart struct {
	mu     sync.Mutex
	lines  map[int64]domain.CartLine
	nextID int64
}

func newFakeCart() *fakeCart {
	return &fakeCart{lines: map[int64]domain.CartLine{}}
}

func (f *fakeCart) Lines(_ context.Context, employeeID int64) ([]domain.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.CartLine
	for _, l := range f.lines {
		if l.EmployeeID == employeeID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeCart) LinesFor(_ context.Context, employeeID, productID int64) ([]domain.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.CartLine
	for _, l := range f.lines {
		if l.EmployeeID == employeeID && l.ProductID == productID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeCart) Insert(_ context.Context, line domain.CartLine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	line.ID = f.nextID
	f.lines[line.ID] = line
	return nil
}

func (f *fakeCart) UpdateQuantity(_ context.Context, id int64, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.lines[id]
	if !ok {
		return ports.ErrNotFound
	}
	l.Quantity = quantity
	f.lines[id] = l
	return nil
}

func (f *fakeCart) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.lines, id)
	return nil
}

func (f *fakeCart) Clear(_ context.Context, employeeID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, l := range f.lines {
		if l.EmployeeID == employeeID {
			delete(f.lines, id)
		}
	}
	return nil
}

type fakeEmployees struct {
	mu        sync.Mutex
	employees map[int64]domain.Employee
}

func newFakeEmployees() *fakeEmployees {
	return &fakeEmployees{employees: map[int64]domain.Employee{}}
}

func (f *fakeEmployees) add(e domain.Employee) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.employees[e.EmployeeID] = e
}

func (f *fakeEmployees) ByEmployeeID(_ context.Context, employeeID int64) (*domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.employees[employeeID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &e, nil
}

func (f *fakeEmployees) ByEmail(_ context.Context, email string) (*domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.employees {
		if e.Email == email {
			return &e, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (f *fakeEmployees) Create(_ context.Context, e domain.Employee) (*domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.employees[e.EmployeeID]; ok {
		return nil, ports.ErrDuplicate
	}
	e.ID = int64(len(f.employees) + 1)
	f.employees[e.EmployeeID] = e
	return &e, nil
}

func (f *fakeEmployees) All(_ context.Context) ([]domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Employee
	for _, e := range f.employees {
		out = append(out, e)
	}
	return out, nil
}

type fakeRewards struct {
	mu         sync.Mutex
	rewards    map[int64]*domain.Reward
	categories map[string]*domain.RewardCategory
	nextID     int64
	nextCatID  int64
}

func newFakeRewards() *fakeRewards {
	return &fakeRewards{
		rewards:    map[int64]*domain.Reward{},
		categories: map[string]*domain.RewardCategory{},
	}
}

func (f *fakeRewards) Create(_ context.Context, in ports.CreateRewardInput) (*domain.Reward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rewards {
		if r.EncryptedCouponCode != nil && *r.EncryptedCouponCode == in.EncryptedCouponCode {
			return nil, ports.ErrDuplicate
		}
	}
	f.nextID++
	code := in.EncryptedCouponCode
	var categoryName string
	for _, c := range f.categories {
		if c.ID == in.CategoryID {
			categoryName = c.Name
		}
	}
	r := &domain.Reward{
		ID:                  f.nextID,
		EncryptedCouponCode: &code,
		CategoryID:          in.CategoryID,
		CategoryName:        categoryName,
		Description:         in.Description,
		RewardPoints:        in.RewardPoints,
		AddedBy:             in.AddedBy,
		CreatedAt:           time.Now(),
	}
	f.rewards[r.ID] = r
	copied := *r
	return &copied, nil
}

func (f *fakeRewards) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rewards, id)
	return nil
}

func (f *fakeRewards) FindByEncryptedCode(_ context.Context, code string) (*domain.Reward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rewards {
		if r.EncryptedCouponCode != nil && *r.EncryptedCouponCode == code {
			copied := *r
			return &copied, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (f *fakeRewards) Claim(_ context.Context, rewardID, employeeID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rewards[rewardID]
	if !ok || r.IsCouponExpired {
		return false, nil
	}
	r.IsCouponExpired = true
	r.RewardeeEmployeeID = &employeeID
	return true, nil
}

func (f *fakeRewards) SetTransaction(_ context.Context, rewardID, transactionID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.rewards[rewardID]; ok {
		r.TransactionID = &transactionID
	}
	return nil
}

func (f *fakeRewards) Unclaim(_ context.Context, rewardID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.rewards[rewardID]; ok {
		r.IsCouponExpired = false
		r.RewardeeEmployeeID = nil
		r.TransactionID = nil
	}
	return nil
}

func (f *fakeRewards) ExpireAll(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.rewards {
		if !r.IsCouponExpired {
			r.IsCouponExpired = true
			r.EncryptedCouponCode = nil
			n++
		}
	}
	return n, nil
}

func (f *fakeRewards) ClaimedForEmployee(_ context.Context, employeeID int64, _ bool) ([]domain.Reward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Reward
	for _, r := range f.rewards {
		if r.RewardeeEmployeeID != nil && *r.RewardeeEmployeeID == employeeID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRewards) Claimed(_ context.Context, filters ports.RewardFilters, _ bool) ([]domain.Reward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Reward
	for _, r := range f.rewards {
		if r.RewardeeEmployeeID == nil {
			continue
		}
		if filters.RewardeeEmployeeID != nil && *r.RewardeeEmployeeID != *filters.RewardeeEmployeeID {
			continue
		}
		if filters.AddedBy != nil && r.AddedBy != *filters.AddedBy {
			continue
		}
		if filters.CategoryID != nil && r.CategoryID != *filters.CategoryID {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRewards) UpsertCategory(_ context.Context, name string) (*domain.RewardCategory, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.categories[name]; ok {
		copied := *c
		return &copied, false, nil
	}
	f.nextCatID++
	c := &domain.RewardCategory{ID: f.nextCatID, Name: name}
	f.categories[name] = c
	copied := *c
	return &copied, true, nil
}

func (f *fakeRewards) DeleteCategory(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name, c := range f.categories {
		if c.ID == id {
			delete(f.categories, name)
		}
	}
	return nil
}

func (f *fakeRewards) Categories(_ context.Context) ([]domain.RewardCategory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.RewardCategory
	for _, c := range f.categories {
		out = append(out, *c)
	}
	return out, nil
}

type fakeJobs struct {
	mu     sync.Mutex
	active *domain.ExpirationJob
	logs   map[int64]*domain.JobLog
	nextID int64
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{logs: map[int64]*domain.JobLog{}}
}

func (f *fakeJobs) Active(_ context.Context) (*domain.ExpirationJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active == nil {
		return nil, ports.ErrNotFound
	}
	copied := *f.active
	return &copied, nil
}

func (f *fakeJobs) Schedule(_ context.Context, expirationDate time.Time, addedBy int64) (*domain.ExpirationJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active != nil {
		return nil, ports.ErrDuplicate
	}
	f.nextID++
	f.active = &domain.ExpirationJob{
		ID:             f.nextID,
		JobID:          f.nextID,
		ExpirationDate: expirationDate,
		IsActive:       true,
		AddedBy:        addedBy,
		CreatedAt:      time.Now(),
	}
	f.logs[f.nextID] = &domain.JobLog{
		JobID:          f.nextID,
		ExpirationDate: expirationDate,
		IsActive:       true,
		AddedBy:        addedBy,
	}
	copied := *f.active
	return &copied, nil
}

func (f *fakeJobs) Delete(_ context.Context, jobID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active == nil || f.active.JobID != jobID {
		return ports.ErrNotFound
	}
	f.active = nil
	return nil
}

func (f *fakeJobs) LogOutcome(_ context.Context, jobID int64, completed, cancelled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if log, ok := f.logs[jobID]; ok {
		log.IsActive = false
		log.IsCompleted = completed
		log.IsCancelled = cancelled
	}
	return nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	sends []sentMail
}

type sentMail struct {
	To          string
	Subject     string
	Body        string
	Attachments []ports.Attachment
}

func (f *fakeNotifier) Send(_ context.Context, to, subject, body string, attachments ...ports.Attachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sentMail{To: to, Subject: subject, Body: body, Attachments: attachments})
	return nil
}
