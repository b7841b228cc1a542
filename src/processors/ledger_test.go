package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/cryptogains/src/models"
)

func TestParseCostBasisMethod(t *testing.T) {
	method, err := ParseCostBasisMethod("FIFO")
	require.NoError(t, err)
	assert.Equal(t, MethodFIFO, method)

	method, err = ParseCostBasisMethod("LIFO")
	require.NoError(t, err)
	assert.Equal(t, MethodLIFO, method)

	for _, invalid := range []string{"", "fifo", "HIFO", "average"} {
		_, err = ParseCostBasisMethod(invalid)
		assert.ErrorIs(t, err, ErrInvalidMethod, "input %q", invalid)
	}
}

func TestBuildLedgerOrdersPerMethod(t *testing.T) {
	acquisitions := []models.TransferRecord{
		acquisition(150, "1", "1"),
		acquisition(100, "1", "1"),
		acquisition(200, "1", "1"),
	}

	fifo := BuildLedger(acquisitions, MethodFIFO)
	blocks := func(l *Ledger) []int64 {
		var out []int64
		for _, lot := range l.Lots() {
			out = append(out, lot.Block)
		}
		return out
	}
	assert.Equal(t, []int64{100, 150, 200}, blocks(fifo))

	lifo := BuildLedger(acquisitions, MethodLIFO)
	assert.Equal(t, []int64{200, 150, 100}, blocks(lifo))
}

func TestActiveLotRespectsCausality(t *testing.T) {
	ledger := BuildLedger([]models.TransferRecord{
		acquisition(100, "1", "1"),
		acquisition(300, "1", "1"),
	}, MethodLIFO)

	lot, fallback := ledger.ActiveLot(disposal(200, "1", "1"))
	require.NotNil(t, lot)
	assert.False(t, fallback)
	assert.Equal(t, int64(100), lot.Block, "newest eligible lot, not the newest overall")
}

func TestActiveLotFallsBackWhenNoEligibleLot(t *testing.T) {
	ledger := BuildLedger([]models.TransferRecord{
		acquisition(300, "1", "1"),
		acquisition(400, "1", "1"),
	}, MethodFIFO)

	lot, fallback := ledger.ActiveLot(disposal(200, "1", "1"))
	require.NotNil(t, lot)
	assert.True(t, fallback)
	assert.Equal(t, int64(300), lot.Block, "pure method order when nothing is eligible")
}

func TestActiveLotOnEmptyLedger(t *testing.T) {
	ledger := BuildLedger(nil, MethodFIFO)
	lot, fallback := ledger.ActiveLot(disposal(200, "1", "1"))
	assert.Nil(t, lot)
	assert.False(t, fallback)
	assert.True(t, ledger.Empty())
}

func TestRemoveDropsExactlyOneLot(t *testing.T) {
	ledger := BuildLedger([]models.TransferRecord{
		acquisition(100, "1", "1"),
		acquisition(150, "1", "1"),
	}, MethodFIFO)

	first := ledger.Lots()[0]
	ledger.Remove(first)
	require.Len(t, ledger.Lots(), 1)
	assert.Equal(t, int64(150), ledger.Lots()[0].Block)

	// Removing an already removed lot is a no-op.
	ledger.Remove(first)
	assert.Len(t, ledger.Lots(), 1)
}

func TestSortDisposalsIsChronologicalWithLogIndexTiebreak(t *testing.T) {
	a := disposal(200, "1", "1")
	a.LogIndex = 7
	b := disposal(100, "1", "1")
	c := disposal(200, "1", "1")
	c.LogIndex = 2

	disposals := []models.TransferRecord{a, b, c}
	SortDisposals(disposals)

	assert.Equal(t, int64(100), disposals[0].Block)
	assert.Equal(t, int64(2), disposals[1].LogIndex)
	assert.Equal(t, int64(7), disposals[2].LogIndex)
}
