package cache

import (
	"context"
	"testing"
	"time"
)

func TestNilDeduperNeverReportsDuplicates(t *testing.T) {
	var d *MessageDeduper
	seen, err := d.Seen(context.Background(), "SM1")
	if err != nil || seen {
		t.Errorf("Seen = %v, %v", seen, err)
	}
	if err := d.Ping(context.Background()); err != nil {
		t.Errorf("Ping = %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
}

func TestNewMessageDeduperAcceptsBothForms(t *testing.T) {
	for _, addr := range []string{"redis://localhost:6379/2", "localhost:6379"} {
		d := NewMessageDeduper(addr, time.Minute)
		if got := d.client.Options().Addr; got != "localhost:6379" {
			t.Errorf("%s: addr = %q", addr, got)
		}
		d.Close()
	}
}

func TestEmptyMessageIDSkipsStore(t *testing.T) {
	d := NewMessageDeduper("localhost:1", time.Minute)
	defer d.Close()
	seen, err := d.Seen(context.Background(), "")
	if err != nil || seen {
		t.Errorf("Seen(\"\") = %v, %v", seen, err)
	}
}
