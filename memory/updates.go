package memory

import "log"

const updateQueueSize = 32

// Updater applies memory diffs off the response path. A single worker
// drains a bounded queue, so writes to user_profile.md stay serialized;
// failures are logged here and never reach the conversation flow. Callers
// must not assume the profile is durably updated by the time a render
// event is observed.
type Updater struct {
	store *Store
	queue chan string
	done  chan struct{}
}

func NewUpdater(store *Store) *Updater {
	u := &Updater{
		store: store,
		queue: make(chan string, updateQueueSize),
		done:  make(chan struct{}),
	}
	go u.run()
	return u
}

// Enqueue hands a diff to the worker without blocking. When the queue is
// full the diff is dropped with a warning; memory updates are best-effort.
func (u *Updater) Enqueue(diff string) {
	select {
	case u.queue <- diff:
	default:
		log.Printf("⚠️ [MEMORY] update queue full, dropping diff (%d chars)", len(diff))
	}
}

func (u *Updater) run() {
	for diff := range u.queue {
		if err := u.store.ApplyUpdate(diff); err != nil {
			log.Printf("⚠️ [MEMORY] failed to apply update: %v", err)
		}
	}
	close(u.done)
}

// Close drains the queue and stops the worker.
func (u *Updater) Close() {
	close(u.queue)
	<-u.done
}

// Memory bundles the file store with its async updater; it is what the
// brain sees.
type Memory struct {
	*Store
	updater *Updater
}

func New(dir string) *Memory {
	store := NewStore(dir)
	return &Memory{Store: store, updater: NewUpdater(store)}
}

// EnqueueUpdate queues a diff for the background worker.
func (m *Memory) EnqueueUpdate(diff string) {
	m.updater.Enqueue(diff)
}

func (m *Memory) Close() {
	m.updater.Close()
}
