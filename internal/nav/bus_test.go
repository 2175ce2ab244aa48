package nav

import "testing"

func TestSubscribeReceivesPublishedRoutes(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish(RouteHome)
	if got := <-ch; got != RouteHome {
		t.Fatalf("expected %q, got %q", RouteHome, got)
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	cancel()

	// Publishing after cancel must not panic or deliver.
	bus.Publish(RouteQuestionnaire)
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel after cancel")
	}
}

func TestSlowSubscriberDropsOldest(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	for i := 0; i < 10; i++ {
		bus.Publish(RouteHome)
	}
	bus.Publish(RouteSignIn)

	var last Route
	for {
		select {
		case r := <-ch:
			last = r
			continue
		default:
		}
		break
	}
	if last != RouteSignIn {
		t.Fatalf("expected newest signal retained, got %q", last)
	}
}
