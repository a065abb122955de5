package scanner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"NewsScanner/internal/domain"
)

type namedScanner string

func (n namedScanner) Name() string { return string(n) }

func (n namedScanner) Scan(context.Context, Request) ([]domain.ArticleStub, error) {
	return []domain.ArticleStub{{Title: string(n)}}, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(namedScanner("browser"))

	sc, err := reg.Resolve("browser")
	require.NoError(t, err)
	require.Equal(t, "browser", sc.Name())

	_, err = reg.Resolve("feed")
	require.Error(t, err)
}

func TestZeroRegistryRegister(t *testing.T) {
	t.Parallel()

	var reg Registry
	reg.Register(namedScanner("feed"))
	_, err := reg.Resolve("feed")
	require.NoError(t, err)
}

func TestRequestOption(t *testing.T) {
	t.Parallel()

	req := Request{Options: map[string]string{"cardSelector": "div.card", "empty": ""}}
	require.Equal(t, "div.card", req.Option("cardSelector", "div.x"))
	require.Equal(t, "fallback", req.Option("empty", "fallback"))
	require.Equal(t, "fallback", req.Option("missing", "fallback"))
}
