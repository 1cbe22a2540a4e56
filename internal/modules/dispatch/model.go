// README: Dispatcher worker identity; status and counter are observability only.
package dispatch

import "sync"

type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusOffline    Status = "offline"
)

type Dispatcher struct {
	id int

	mu        sync.Mutex
	status    Status
	processed int
}

func NewDispatcher(id int) *Dispatcher {
	return &Dispatcher{id: id, status: StatusIdle}
}

func (d *Dispatcher) ID() int { return d.id }

func (d *Dispatcher) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

func (d *Dispatcher) setStatus(s Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = s
}

func (d *Dispatcher) Processed() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.processed
}

func (d *Dispatcher) incrementProcessed() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.processed++
}
