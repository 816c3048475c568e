package action

import "testing"

func TestBusOrderedDelivery(t *testing.T) {
	b := NewBus(4)
	b.Send(Toggle)
	b.Send(IconClick)
	b.Send(Exit)
	b.Close()

	var got []Type
	for t := range b.Receive() {
		got = append(got, t)
	}
	want := []Type{Toggle, IconClick, Exit}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("out of order at %d: got %v, want %v", i, got, want)
		}
	}
}

func TestBusDropsWhenFull(t *testing.T) {
	b := NewBus(1)
	b.Send(Toggle)
	b.Send(IconClick) // dropped: buffer full
	b.Close()

	var got []Type
	for t := range b.Receive() {
		got = append(got, t)
	}
	if len(got) != 1 || got[0] != Toggle {
		t.Fatalf("expected only the first action to survive, got %v", got)
	}
}
