package toast

import "sync"

// Type represents the toast notification type.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Toast is one notification as sent to clients.
type Toast struct {
	Level   Type   `json:"level"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
}

// Notifier fans toasts out to the listeners of one visitor. Toasts shown
// while nobody listens are dropped, and a listener whose buffer is full
// misses the toast rather than blocking the sender.
type Notifier struct {
	mu        sync.Mutex
	next      int
	listeners map[int]chan Toast
}

// NewNotifier returns a Notifier with no listeners.
func NewNotifier() *Notifier {
	return &Notifier{listeners: make(map[int]chan Toast)}
}

// Listen returns a channel receiving every toast shown from now on, and a
// function that stops delivery and closes the channel.
func (n *Notifier) Listen(buffer int) (<-chan Toast, func()) {
	ch := make(chan Toast, buffer)

	n.mu.Lock()
	id := n.next
	n.next++
	n.listeners[id] = ch
	n.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.listeners, id)
			n.mu.Unlock()
			close(ch)
		})
	}
}

// Len returns the number of listeners.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}

// Send delivers t to every listener.
func (n *Notifier) Send(t Toast) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.listeners {
		select {
		case ch <- t:
		default:
		}
	}
}

// Show sends a toast with the given level.
func (n *Notifier) Show(level Type, message string) {
	n.Send(Toast{Level: level, Message: message})
}

// Success shows a success toast.
//
//	app.Toasts().Success(app.Language().T(i18n.CartAddedToast))
func (n *Notifier) Success(message string) {
	n.Show(TypeSuccess, message)
}

// Error shows an error toast.
func (n *Notifier) Error(message string) {
	n.Show(TypeError, message)
}

// Warning shows a warning toast.
func (n *Notifier) Warning(message string) {
	n.Show(TypeWarning, message)
}

// Info shows an info toast.
func (n *Notifier) Info(message string) {
	n.Show(TypeInfo, message)
}

// WithTitle shows a toast with a title and message.
//
//	n.WithTitle(toast.TypeSuccess, "Cart", "Added to cart")
func (n *Notifier) WithTitle(level Type, title, message string) {
	n.Send(Toast{Level: level, Title: title, Message: message})
}
