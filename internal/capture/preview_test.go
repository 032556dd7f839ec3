package capture

import (
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func TestPreview_OfferWithoutWatchers(t *testing.T) {
	p := NewPreview()
	frame := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3)
	defer frame.Close()

	if err := p.Offer(&frame); err != nil {
		t.Fatalf("Offer() error = %v", err)
	}
	if p.seq != 0 {
		t.Error("frames must not be encoded while nobody watches")
	}
}

func TestPreview_NextDeliversNewFrames(t *testing.T) {
	p := NewPreview()
	release := p.Watch()
	defer release()

	if !p.Watching() {
		t.Fatal("expected a watcher")
	}

	got := make(chan []byte, 1)
	go func() {
		jpeg, _, ok := p.Next(0, func() bool { return false })
		if ok {
			got <- jpeg
		}
		close(got)
	}()

	time.Sleep(10 * time.Millisecond)
	p.Put([]byte{0xff, 0xd8})

	select {
	case b := <-got:
		if len(b) != 2 {
			t.Errorf("got %v", b)
		}
	case <-time.After(time.Second):
		t.Fatal("Next did not return")
	}
}

func TestPreview_ReleaseAndClose(t *testing.T) {
	p := NewPreview()
	release := p.Watch()
	release()
	release()

	if p.Watching() {
		t.Error("expected no watchers after release")
	}

	done := make(chan bool, 1)
	go func() {
		_, _, ok := p.Next(0, func() bool { return false })
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	p.Close()

	select {
	case ok := <-done:
		if ok {
			t.Error("Next after Close should report !ok")
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not release Next")
	}
}

func TestPreview_Offer_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping OpenCV test")
	}

	p := NewPreview()
	defer p.Watch()()

	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()

	if err := p.Offer(&frame); err != nil {
		t.Fatalf("Offer() error = %v", err)
	}
	jpeg, seq, ok := p.Next(0, func() bool { return false })
	if !ok || seq != 1 || len(jpeg) < 2 || jpeg[0] != 0xff || jpeg[1] != 0xd8 {
		t.Errorf("expected a JPEG frame, got seq=%d len=%d", seq, len(jpeg))
	}
}
