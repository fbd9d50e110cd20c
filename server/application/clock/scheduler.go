package clock

import (
	"container/heap"
	"time"
)

type TaskID uint64

// Task は予定時刻以降の Drain で一度だけ実行されます。now は Drain に渡された時刻です。
type Task func(now time.Time)

type task struct {
	id    TaskID
	due   time.Time
	fn    Task
	index int
}

// Scheduler は仮想時刻で動く遅延タスクキューです。
// 壁時計のタイマーを使わないので、tick 境界でのみタスクが走ります。
type Scheduler struct {
	queue  taskQueue
	byID   map[TaskID]*task
	nextID TaskID
}

func NewScheduler() *Scheduler {
	return &Scheduler{byID: make(map[TaskID]*task)}
}

// At は due 以降の最初の Drain で fn を実行するよう登録します。
func (s *Scheduler) At(due time.Time, fn Task) TaskID {
	s.nextID++
	t := &task{id: s.nextID, due: due, fn: fn}
	heap.Push(&s.queue, t)
	s.byID[t.id] = t
	return t.id
}

func (s *Scheduler) After(now time.Time, d time.Duration, fn Task) TaskID {
	return s.At(now.Add(d), fn)
}

// Cancel は未実行のタスクを取り消します。既に実行済みなら false。
func (s *Scheduler) Cancel(id TaskID) bool {
	t, ok := s.byID[id]
	if !ok {
		return false
	}
	heap.Remove(&s.queue, t.index)
	delete(s.byID, id)
	return true
}

func (s *Scheduler) Len() int { return len(s.queue) }

// Drain は due <= now のタスクを予定時刻順 (同時刻は登録順) に実行し、実行数を返します。
// 実行中に登録された期限切れのタスクも同じ Drain で実行されます。
func (s *Scheduler) Drain(now time.Time) int {
	n := 0
	for len(s.queue) > 0 {
		next := s.queue[0]
		if next.due.After(now) {
			break
		}
		heap.Pop(&s.queue)
		delete(s.byID, next.id)
		next.fn(now)
		n++
	}
	return n
}

// Reset は全タスクを破棄します。スナップショット適用時に使います。
func (s *Scheduler) Reset() {
	s.queue = nil
	s.byID = make(map[TaskID]*task)
}

type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].id < q[j].id
	}
	return q[i].due.Before(q[j].due)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
