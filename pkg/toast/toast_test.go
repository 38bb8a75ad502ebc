package toast_test

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/terpenos/storefront/pkg/toast"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		name string
		show func(*toast.Notifier)
		want toast.Toast
	}{
		{"success", func(n *toast.Notifier) { n.Success("Item saved!") }, toast.Toast{Level: toast.TypeSuccess, Message: "Item saved!"}},
		{"error", func(n *toast.Notifier) { n.Error("Failed") }, toast.Toast{Level: toast.TypeError, Message: "Failed"}},
		{"warning", func(n *toast.Notifier) { n.Warning("Careful") }, toast.Toast{Level: toast.TypeWarning, Message: "Careful"}},
		{"info", func(n *toast.Notifier) { n.Info("FYI") }, toast.Toast{Level: toast.TypeInfo, Message: "FYI"}},
		{"title", func(n *toast.Notifier) { n.WithTitle(toast.TypeSuccess, "Cart", "Added") }, toast.Toast{Level: toast.TypeSuccess, Title: "Cart", Message: "Added"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := toast.NewNotifier()
			ch, stop := n.Listen(1)
			defer stop()

			tt.show(n)

			select {
			case got := <-ch:
				if diff := cmp.Diff(tt.want, got); diff != "" {
					t.Errorf("toast mismatch (-want +got):\n%s", diff)
				}
			default:
				t.Fatal("no toast delivered")
			}
		})
	}
}

func TestNoListenerDrops(t *testing.T) {
	n := toast.NewNotifier()
	n.Success("nobody hears this")

	ch, stop := n.Listen(1)
	defer stop()
	select {
	case got := <-ch:
		t.Fatalf("late listener got %+v", got)
	default:
	}
}

func TestFullBufferDoesNotBlock(t *testing.T) {
	n := toast.NewNotifier()
	ch, stop := n.Listen(1)
	defer stop()

	n.Info("first")
	n.Info("second")

	if got := <-ch; got.Message != "first" {
		t.Errorf("got %q, want first", got.Message)
	}
	select {
	case got := <-ch:
		t.Errorf("overflow delivered %+v", got)
	default:
	}
}

func TestStopClosesAndRemoves(t *testing.T) {
	n := toast.NewNotifier()
	ch, stop := n.Listen(1)
	other, stopOther := n.Listen(1)
	defer stopOther()

	stop()
	stop()

	if _, ok := <-ch; ok {
		t.Error("channel still open after stop")
	}
	if n.Len() != 1 {
		t.Errorf("Len = %d, want 1", n.Len())
	}

	n.Success("still delivered")
	if got := <-other; got.Message != "still delivered" {
		t.Errorf("remaining listener got %q", got.Message)
	}
}

func TestConcurrentSendAndStop(t *testing.T) {
	n := toast.NewNotifier()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		ch, stop := n.Listen(4)
		go func() {
			defer wg.Done()
			for range ch {
			}
		}()
		go func() {
			defer wg.Done()
			n.Success("hello")
			stop()
		}()
	}
	wg.Wait()
	if n.Len() != 0 {
		t.Errorf("Len = %d, want 0", n.Len())
	}
}
