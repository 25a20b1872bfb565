package order

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

const benchRows = 5000

func seedBenchRepository(b *testing.B, indexOrderNumber bool) (*Repository, []int64) {
	b.Helper()
	repo, _ := newTestRepository(b, indexOrderNumber)

	ctx := context.Background()
	ids := make([]int64, 0, benchRows)
	for i := 0; i < benchRows; i++ {
		order := sampleOrder(fmt.Sprintf("ORD-%08d", i))
		require.NoError(b, repo.Insert(ctx, order))
		ids = append(ids, order.ID)
	}
	return repo, ids
}

func BenchmarkFindByID(b *testing.B) {
	repo, ids := seedBenchRepository(b, false)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := repo.FindByID(ctx, ids[i%len(ids)]); err != nil {
			b.Fatal(err)
		}
	}
}

// Full table scan per lookup.
func BenchmarkFindByOrderNumber(b *testing.B) {
	repo, _ := seedBenchRepository(b, false)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := repo.FindByOrderNumber(ctx, fmt.Sprintf("ORD-%08d", i%benchRows)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFindByOrderNumberIndexed(b *testing.B) {
	repo, _ := seedBenchRepository(b, true)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := repo.FindByOrderNumber(ctx, fmt.Sprintf("ORD-%08d", i%benchRows)); err != nil {
			b.Fatal(err)
		}
	}
}
