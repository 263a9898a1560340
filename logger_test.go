package shapeshift_test

import (
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dhoelle/shapeshift"
)

func Test_SetLoggerNil(t *testing.T) {
	shapeshift.SetLogger(nil)
	defer shapeshift.SetLogger(nil)

	if shapeshift.Logger() == nil {
		t.Fatal("Logger() = nil after SetLogger(nil)")
	}
	// rollback logs at debug level
	_, err := shapeshift.BuildArray(2, func() (int, bool, error) { return 0, false, nil })
	if err == nil {
		t.Fatal("BuildArray() succeeded, want length mismatch")
	}
}

func Test_SetLoggerConcurrent(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := zap.New(core)
	defer shapeshift.SetLogger(nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			shapeshift.SetLogger(l)
		}()
		go func() {
			defer wg.Done()
			shapeshift.Logger().Debug("concurrent")
		}()
	}
	wg.Wait()

	shapeshift.SetLogger(l)
	shapeshift.Logger().Debug("after")
	if n := logs.FilterMessage("after").Len(); n != 1 {
		t.Errorf("got %d log entries, want 1", n)
	}
}
