// Package session 会话存储单元测试
package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ashwinyue/prts/internal/kv"
	"github.com/ashwinyue/prts/internal/model"
)

// fakeClock 可控时钟
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T) (*Store, *kv.MemoryStore, *fakeClock) {
	t.Helper()
	mem := kv.NewMemoryStore()
	clock := &fakeClock{t: time.UnixMilli(1_700_000_000_000)}
	s := NewStore(context.Background(), mem, &Options{
		Now:          clock.Now,
		DefaultTitle: func() string { return "新会话" },
	})
	return s, mem, clock
}

func countFor(s *Store, c model.Context) int {
	return len(s.List(c))
}

// ========== Create 测试 ==========

func TestStore_Create(t *testing.T) {
	s, mem, clock := newTestStore(t)
	ctx := context.Background()
	amiya := model.SingleContext("amiya")

	s.SetMenuOpen(true)
	id := s.Create(ctx, amiya)

	if id != "amiya_1700000000000" {
		t.Errorf("Create() id = %q, want amiya_1700000000000", id)
	}
	sess, ok := s.Get(id)
	if !ok {
		t.Fatal("created session not found")
	}
	if sess.OperatorID != "amiya" {
		t.Errorf("OperatorID = %q, want amiya", sess.OperatorID)
	}
	if sess.Title != "新会话" {
		t.Errorf("Title = %q, want 新会话", sess.Title)
	}
	if len(sess.Messages) != 0 {
		t.Errorf("Messages = %d, want 0", len(sess.Messages))
	}
	if sess.CreatedAt != clock.Now().UnixMilli() {
		t.Errorf("CreatedAt = %d, want %d", sess.CreatedAt, clock.Now().UnixMilli())
	}
	if s.Active(amiya) != id {
		t.Errorf("Active() = %q, want %q", s.Active(amiya), id)
	}
	if s.MenuOpen() {
		t.Error("Create() should close the session menu")
	}
	if _, found, _ := mem.Get(ctx, kv.KeySessions); !found {
		t.Error("Create() should persist the session collection")
	}
}

func TestStore_Create_SameInstantUnique(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	amiya := model.SingleContext("amiya")

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		id := s.Create(ctx, amiya)
		if seen[id] {
			t.Fatalf("Create() returned duplicate id %q", id)
		}
		seen[id] = true
	}
	if s.Len() != 5 {
		t.Errorf("Len() = %d, want 5", s.Len())
	}
}

func TestStore_Create_Group(t *testing.T) {
	s, _, _ := newTestStore(t)
	id := s.Create(context.Background(), model.GroupContext())

	if !strings.HasPrefix(id, model.GroupChatID+"_") {
		t.Errorf("Create(group) id = %q, want group_ prefix", id)
	}
	sess, _ := s.Get(id)
	if !sess.Context().IsGroup() {
		t.Error("group session should report a group context")
	}
}

// ========== Delete 测试 ==========

func TestStore_Delete_Unknown(t *testing.T) {
	s, _, _ := newTestStore(t)
	if s.Delete(context.Background(), "missing") {
		t.Error("Delete(missing) should return false")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestStore_Delete_OnlySessionRecreates(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()
	amiya := model.SingleContext("amiya")

	only := s.ResolveActive(ctx, amiya, "")
	clock.Advance(time.Second)

	if !s.Delete(ctx, only) {
		t.Fatal("Delete() should succeed")
	}

	if _, ok := s.Get(only); ok {
		t.Error("deleted session should be absent")
	}
	list := s.List(amiya)
	if len(list) != 1 {
		t.Fatalf("sessions for amiya = %d, want 1", len(list))
	}
	if list[0].ID == only {
		t.Error("replacement session should have a fresh id")
	}
	if s.Active(amiya) != list[0].ID {
		t.Errorf("Active() = %q, want replacement %q", s.Active(amiya), list[0].ID)
	}
}

func TestStore_Delete_ActiveSelectsMostRecent(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()
	amiya := model.SingleContext("amiya")
	texas := model.SingleContext("texas")

	oldest := s.Create(ctx, amiya)
	clock.Advance(time.Second)
	middle := s.Create(ctx, amiya)
	clock.Advance(time.Second)
	s.Create(ctx, texas) // 其他上下文更新，不应被选中
	clock.Advance(time.Second)
	newest := s.Create(ctx, amiya)

	if s.Active(amiya) != newest {
		t.Fatalf("Active() = %q, want %q", s.Active(amiya), newest)
	}

	s.Delete(ctx, newest)
	if got := s.Active(amiya); got != middle {
		t.Errorf("after deleting newest Active() = %q, want %q", got, middle)
	}

	s.Delete(ctx, middle)
	if got := s.Active(amiya); got != oldest {
		t.Errorf("after deleting middle Active() = %q, want %q", got, oldest)
	}
}

func TestStore_Delete_InactiveKeepsActive(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()
	amiya := model.SingleContext("amiya")

	first := s.Create(ctx, amiya)
	clock.Advance(time.Second)
	second := s.Create(ctx, amiya)

	s.Delete(ctx, first)
	if s.Active(amiya) != second {
		t.Errorf("Active() = %q, want %q", s.Active(amiya), second)
	}
	if countFor(s, amiya) != 1 {
		t.Errorf("sessions = %d, want 1", countFor(s, amiya))
	}
}

func TestStore_NeverEmptyAfterOperations(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()
	amiya := model.SingleContext("amiya")

	s.ResolveActive(ctx, amiya, "")

	// 创建与删除交替进行，每一步之后上下文至少保留一个会话
	ops := []string{"create", "delete", "delete", "create", "create", "delete", "delete", "delete"}
	for i, op := range ops {
		clock.Advance(time.Millisecond)
		switch op {
		case "create":
			s.Create(ctx, amiya)
		case "delete":
			s.Delete(ctx, s.Active(amiya))
		}
		if n := countFor(s, amiya); n < 1 {
			t.Fatalf("step %d (%s): sessions = %d, want >= 1", i, op, n)
		}
		active := s.Active(amiya)
		sess, ok := s.Get(active)
		if !ok || sess.OperatorID != "amiya" {
			t.Fatalf("step %d (%s): active %q does not belong to amiya", i, op, active)
		}
	}
}

// ========== Rename 测试 ==========

func TestStore_Rename(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	id := s.Create(ctx, model.SingleContext("amiya"))

	tests := []struct {
		name   string
		title  string
		wantOK bool
		want   string
	}{
		{name: "empty", title: "", wantOK: false, want: "新会话"},
		{name: "whitespace", title: "   ", wantOK: false, want: "新会话"},
		{name: "verbatim", title: "Foo", wantOK: true, want: "Foo"},
		{name: "keeps surrounding spaces", title: "  Bar ", wantOK: true, want: "  Bar "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, _ := s.Get(id)
			ok := s.Rename(ctx, id, tt.title)
			if ok != tt.wantOK {
				t.Errorf("Rename() = %v, want %v", ok, tt.wantOK)
			}
			after, _ := s.Get(id)
			if !tt.wantOK && after.Title != before.Title {
				t.Errorf("Title changed to %q on a discarded rename", after.Title)
			}
			if tt.wantOK && after.Title != tt.want {
				t.Errorf("Title = %q, want %q", after.Title, tt.want)
			}
		})
	}
}

func TestStore_Rename_Unknown(t *testing.T) {
	s, _, _ := newTestStore(t)
	if s.Rename(context.Background(), "missing", "Foo") {
		t.Error("Rename(missing) should return false")
	}
}

// ========== Append 测试 ==========

func TestStore_Append_PreservesOrder(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	id := s.Create(ctx, model.SingleContext("amiya"))

	m1 := model.Message{ID: "m1", Role: model.RoleUser, Text: "a", Timestamp: 30}
	m2 := model.Message{ID: "m2", Role: model.RoleModel, Text: "b", Timestamp: 10}
	m3 := model.Message{ID: "m3", Role: model.RoleUser, Text: "c", Timestamp: 20}

	if !s.Append(ctx, id, m1, m2) {
		t.Fatal("Append() should succeed")
	}
	if !s.Append(ctx, id, m3) {
		t.Fatal("Append() should succeed")
	}

	sess, _ := s.Get(id)
	got := make([]string, len(sess.Messages))
	for i, m := range sess.Messages {
		got[i] = m.ID
	}
	want := []string{"m1", "m2", "m3"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("message order = %v, want %v (timestamps must not reorder)", got, want)
	}
}

func TestStore_Append_Unknown(t *testing.T) {
	s, _, _ := newTestStore(t)
	if s.Append(context.Background(), "missing", model.Message{ID: "x"}) {
		t.Error("Append(missing) should return false")
	}
}

func TestStore_Get_ReturnsCopy(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	id := s.Create(ctx, model.SingleContext("amiya"))
	s.Append(ctx, id, model.Message{ID: "m1", Text: "hi"})

	sess, _ := s.Get(id)
	sess.Messages[0].Text = "mutated"
	sess.Title = "mutated"

	again, _ := s.Get(id)
	if again.Messages[0].Text != "hi" || again.Title == "mutated" {
		t.Error("Get() must not expose internal session state")
	}
}

// ========== ResolveActive 测试 ==========

func TestStore_ResolveActive_EmptyContextCreates(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	amiya := model.SingleContext("amiya")

	id := s.ResolveActive(ctx, amiya, "")

	list := s.List(amiya)
	if len(list) != 1 {
		t.Fatalf("sessions = %d, want exactly 1", len(list))
	}
	sess := list[0]
	if sess.ID != id {
		t.Errorf("ResolveActive() = %q, want created %q", id, sess.ID)
	}
	if sess.OperatorID != "amiya" || len(sess.Messages) != 0 || sess.Title != "新会话" {
		t.Errorf("unexpected created session: %+v", sess)
	}
}

func TestStore_ResolveActive_Idempotent(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	amiya := model.SingleContext("amiya")

	first := s.ResolveActive(ctx, amiya, "")
	n := s.Len()
	second := s.ResolveActive(ctx, amiya, "")

	if first != second {
		t.Errorf("ResolveActive() = %q then %q, want identical", first, second)
	}
	if s.Len() != n {
		t.Errorf("second call created sessions: %d -> %d", n, s.Len())
	}

	third := s.ResolveActive(ctx, amiya, first)
	if third != first {
		t.Errorf("ResolveActive(current) = %q, want %q", third, first)
	}
}

func TestStore_ResolveActive_KeepsCurrent(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()
	amiya := model.SingleContext("amiya")

	older := s.Create(ctx, amiya)
	clock.Advance(time.Second)
	s.Create(ctx, amiya)

	if got := s.ResolveActive(ctx, amiya, older); got != older {
		t.Errorf("ResolveActive() = %q, want current %q", got, older)
	}
	if s.Active(amiya) != older {
		t.Errorf("Active() = %q, want %q", s.Active(amiya), older)
	}
}

func TestStore_ResolveActive_ForeignCurrentSwitches(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()
	amiya := model.SingleContext("amiya")
	texas := model.SingleContext("texas")

	texasID := s.Create(ctx, texas)
	clock.Advance(time.Second)
	amiyaOld := s.Create(ctx, amiya)
	clock.Advance(time.Second)
	amiyaNew := s.Create(ctx, amiya)

	got := s.ResolveActive(ctx, amiya, texasID)
	if got != amiyaNew {
		t.Errorf("ResolveActive() = %q, want most recent %q (not %q)", got, amiyaNew, amiyaOld)
	}
}

func TestStore_ResolveActive_TieBreakDeterministic(t *testing.T) {
	ctx := context.Background()
	amiya := model.SingleContext("amiya")

	// 两个会话创建时间相同，按 ID 升序选择
	mem := kv.NewMemoryStore()
	sessions := map[string]*model.ChatSession{
		"amiya_b": {ID: "amiya_b", OperatorID: "amiya", Title: "b", CreatedAt: 1000},
		"amiya_a": {ID: "amiya_a", OperatorID: "amiya", Title: "a", CreatedAt: 1000},
	}
	if err := kv.SetJSON(ctx, mem, kv.KeySessions, sessions); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 20; i++ {
		s := NewStore(ctx, mem, nil)
		if got := s.ResolveActive(ctx, amiya, ""); got != "amiya_a" {
			t.Fatalf("run %d: ResolveActive() = %q, want amiya_a", i, got)
		}
	}
}

// ========== 持久化测试 ==========

func TestStore_ReloadFromKV(t *testing.T) {
	s, mem, _ := newTestStore(t)
	ctx := context.Background()
	amiya := model.SingleContext("amiya")

	id := s.Create(ctx, amiya)
	s.Rename(ctx, id, "Chernobog")
	s.Append(ctx, id, model.Message{ID: "m1", Role: model.RoleUser, Text: "hello"})

	reloaded := NewStore(ctx, mem, nil)
	sess, ok := reloaded.Get(id)
	if !ok {
		t.Fatal("session missing after reload")
	}
	if sess.Title != "Chernobog" || len(sess.Messages) != 1 || sess.Messages[0].Text != "hello" {
		t.Errorf("unexpected reloaded session: %+v", sess)
	}
}

func TestStore_CorruptKVStartsFresh(t *testing.T) {
	mem := kv.NewMemoryStore()
	ctx := context.Background()
	_ = mem.Set(ctx, kv.KeySessions, "{{{")

	s := NewStore(ctx, mem, nil)
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0 for corrupt data", s.Len())
	}
}

func TestStore_PersistFailureKeepsLiveState(t *testing.T) {
	s, mem, _ := newTestStore(t)
	ctx := context.Background()
	mem.SetErr = errors.New("quota exceeded")

	id := s.Create(ctx, model.SingleContext("amiya"))
	if !s.Append(ctx, id, model.Message{ID: "m1", Text: "still here"}) {
		t.Fatal("Append() should succeed even when persistence fails")
	}

	sess, ok := s.Get(id)
	if !ok || len(sess.Messages) != 1 {
		t.Error("in-memory state should survive a failed save")
	}
}

func TestNewStore_NilKV(t *testing.T) {
	s := NewStore(context.Background(), nil, nil)
	id := s.Create(context.Background(), model.SingleContext("amiya"))
	if _, ok := s.Get(id); !ok {
		t.Error("store without kv should still work in memory")
	}
}

func TestStore_Snapshot(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()

	a := s.Create(ctx, model.SingleContext("amiya"))
	clock.Advance(time.Second)
	g := s.Create(ctx, model.GroupContext())

	snap := s.Snapshot()
	if len(snap) != 2 || snap[a] == nil || snap[g] == nil {
		t.Fatalf("Snapshot() = %v, want sessions %s and %s", snap, a, g)
	}
	snap[a].Title = "mutated"
	if got, _ := s.Get(a); got.Title == "mutated" {
		t.Error("Snapshot() must return copies")
	}
}

// cancelAwareStore 模拟网络存储：上下文取消后写入失败
type cancelAwareStore struct {
	*kv.MemoryStore
}

func (s cancelAwareStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func TestStore_PersistsAfterRequestCanceled(t *testing.T) {
	mem := kv.NewMemoryStore()
	s := NewStore(context.Background(), cancelAwareStore{mem}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	id := s.Create(ctx, model.SingleContext("amiya"))
	s.Append(ctx, id, model.Message{ID: "m1", Text: "sent before disconnect"})

	reloaded := NewStore(context.Background(), mem, nil)
	sess, ok := reloaded.Get(id)
	if !ok || len(sess.Messages) != 1 {
		t.Errorf("session after reload = %+v, want the appended message persisted", sess)
	}
}
