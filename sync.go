package fsm

import "sync"

// Synchronized serializes access to a Machine so it can be shared between
// goroutines. Hooks and conditions run while the lock is held and must not
// call back into the same Synchronized machine.
type Synchronized[T any] struct {
	mutex   sync.RWMutex
	machine *Machine[T]
}

// Synchronize wraps m
func Synchronize[T any](m *Machine[T]) *Synchronized[T] {
	return &Synchronized[T]{machine: m}
}

// On calls Machine.On under the write lock
func (s *Synchronized[T]) On(action ActionID, arg T) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.machine.On(action, arg)
}

// Fire calls Machine.Fire under the write lock
func (s *Synchronized[T]) Fire(action ActionID) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.machine.Fire(action)
}

// Can calls Machine.Can under the write lock, since conditions may have side effects
func (s *Synchronized[T]) Can(action ActionID, arg T) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.machine.Can(action, arg)
}

// Reset calls Machine.Reset under the write lock
func (s *Synchronized[T]) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.machine.Reset()
}

// AddObserver calls Machine.AddObserver under the write lock
func (s *Synchronized[T]) AddObserver(observer Observer) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.machine.AddObserver(observer)
}

// RemoveObserver calls Machine.RemoveObserver under the write lock
func (s *Synchronized[T]) RemoveObserver(observer Observer) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.machine.RemoveObserver(observer)
}

// CurrentState returns the current state
func (s *Synchronized[T]) CurrentState() StateID {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.machine.CurrentState()
}

// Is reports whether the machine is in the given state
func (s *Synchronized[T]) Is(state StateID) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.machine.Is(state)
}

// ID returns the instance ID
func (s *Synchronized[T]) ID() string {
	return s.machine.ID()
}

// Name returns the machine label
func (s *Synchronized[T]) Name() string {
	return s.machine.Name()
}
