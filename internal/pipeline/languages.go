package pipeline

import (
	"github.com/sibyllinesoft/refactorlens/internal/adapter"
	"github.com/sibyllinesoft/refactorlens/internal/adapter/goadapter"
	"github.com/sibyllinesoft/refactorlens/internal/adapter/pyadapter"
	"github.com/sibyllinesoft/refactorlens/internal/adapter/rustadapter"
	"github.com/sibyllinesoft/refactorlens/internal/adapter/tsadapter"
	"github.com/sibyllinesoft/refactorlens/internal/adapter/zigadapter"
)

// RegisterLanguages populates the process-wide adapter registry. Called
// once during startup.
func RegisterLanguages() {
	adapter.Register(goadapter.New(), adapter.AdapterStatus{
		Language: "go", Available: true,
		FeaturesSupported: []string{"entities", "imports", "calls"},
	})
	adapter.Register(pyadapter.New(), adapter.AdapterStatus{
		Language: "python", Available: true,
		FeaturesSupported: []string{"entities", "imports", "calls"},
	})
	adapter.Register(tsadapter.NewJavaScript(), adapter.AdapterStatus{
		Language: "javascript", Available: true,
		FeaturesSupported: []string{"entities", "imports", "calls"},
	})
	adapter.Register(tsadapter.NewTypeScript(), adapter.AdapterStatus{
		Language: "typescript", Available: true,
		FeaturesSupported: []string{"entities", "imports", "calls"},
	})
	adapter.Register(rustadapter.New(), adapter.AdapterStatus{
		Language: "rust", Available: true,
		FeaturesSupported: []string{"entities", "imports", "calls"},
	})
	adapter.Register(zigadapter.New(), adapter.AdapterStatus{
		Language: "zig", Available: true,
		FeaturesSupported: []string{"entities", "imports", "calls"},
	})
}
