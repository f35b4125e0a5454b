package challanstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"challanup-backend/lib/challanstore/db"
	"challanup-backend/lib/timezone"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func testStore(t *testing.T) *Store {
	sqlite, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	_, err = sqlite.Exec(db.Schema)
	require.NoError(t, err)
	return NewStore(sqlite)
}

func TestStore(t *testing.T) {
	store := testStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	{
		recs, err := store.List(ctx, 10)
		require.NoError(t, err)
		require.Len(t, recs, 0)
	}

	now := timezone.Now().Truncate(time.Second)
	_, err := store.Push(ctx, Record{
		ChallanNo:     "CH-9",
		SystemId:      "51234",
		CompanyId:     "2",
		CompanyName:   "Cotton Clothing",
		BookingNo:     "1500/315 B",
		LineNo:        "31",
		Color:         "Navy",
		IssueDate:     "05-Aug-2025",
		TotalQuantity: 72,
		Report1Url:    "http://erp.example/report1",
		Report2Url:    "http://erp.example/report2",
		CreatedAt:     now,
	})
	require.NoError(t, err)

	_, err = store.Push(ctx, Record{
		ChallanNo:   "CH-10",
		SystemId:    "51235",
		CompanyId:   "1",
		CompanyName: "Cotton Club BD",
		CreatedAt:   now.Add(time.Minute),
	})
	require.NoError(t, err)

	{
		recs, err := store.List(ctx, 10)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		// newest first
		require.Equal(t, "CH-10", recs[0].ChallanNo)
		require.Equal(t, "CH-9", recs[1].ChallanNo)
		require.Equal(t, int64(72), recs[1].TotalQuantity)
		require.Equal(t, now.Unix(), recs[1].CreatedAt.Unix())
	}
	{
		recs, err := store.FindByChallanNo(ctx, "CH-9")
		require.NoError(t, err)
		require.Len(t, recs, 1)
		require.Equal(t, "51234", recs[0].SystemId)
		require.Equal(t, "Cotton Clothing", recs[0].CompanyName)
	}
	{
		recs, err := store.FindByChallanNo(ctx, "missing")
		require.NoError(t, err)
		require.Len(t, recs, 0)
	}
}

func TestStoreListLimit(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	base := timezone.Now()
	for i := 0; i < 5; i++ {
		_, err := store.Push(ctx, Record{
			ChallanNo: "CH",
			SystemId:  "1",
			CompanyId: "1",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	recs, err := store.List(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)
}
