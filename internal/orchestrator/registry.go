package orchestrator

import (
	"fmt"
	"sync"

	"relive-web/internal/domain"
)

// Handle はセッションへの同期アクセスを提供します。生成ループが
// 書き込み、状態確認のハンドラが読み取るため、排他が必要なのです。
type Handle struct {
	mu      sync.RWMutex
	session *domain.Session
}

// Read はセッションを読み取りロック下で参照します。fn 内でセッションを
// 変更してはいけません。
func (h *Handle) Read(fn func(s *domain.Session)) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	fn(h.session)
}

// Update はセッションを書き込みロック下で変更します。
func (h *Handle) Update(fn func(s *domain.Session) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h.session)
}

// Registry は進行中セッションの置き場です。
type Registry struct {
	mu      sync.RWMutex
	handles map[string]*Handle
}

// NewRegistry は空のレジストリを返します。
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]*Handle)}
}

// Put はセッションを登録してハンドルを返します。
func (r *Registry) Put(session *domain.Session) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := &Handle{session: session}
	r.handles[session.ID] = h
	return h
}

// Get は登録済みセッションのハンドルを返します。
func (r *Registry) Get(id string) (*Handle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[id]
	if !ok {
		return nil, fmt.Errorf("セッション %s が見つかりません", id)
	}
	return h, nil
}

// Remove はセッションを破棄します。進行中の生成があっても構いません。
// その結果は単に適用されなくなるだけです。
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, id)
}
