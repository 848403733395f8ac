package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/stay-engine/engine"
)

func TestRank_SortsByNetCostAscending(t *testing.T) {
	global := twoNightStay()
	program := marriottStyleProgram()

	cheap := hotel200PreTax()
	cheap.ID, cheap.Name = "hotel-cheap", "Cheap"
	cheapRate := engine.NewMoney(100, engine.USD)
	cheap.PreTax = &cheapRate

	pricey := hotel200PreTax()
	pricey.ID, pricey.Name = "hotel-pricey", "Pricey"

	ranked := engine.Rank(global, []engine.Program{program}, []engine.HotelOption{pricey, cheap}, nil)

	require.Len(t, ranked, 2)
	assert.Equal(t, "hotel-cheap", ranked[0].Hotel.ID)
	assert.Equal(t, "hotel-pricey", ranked[1].Hotel.ID)
	assert.True(t, ranked[0].Calc.NetCost.LessThan(ranked[1].Calc.NetCost))
}

func TestRank_DanglingProgramSortsLast(t *testing.T) {
	// GIVEN: a stay whose programId no longer resolves
	// THEN: it gets the unresolved sentinel and sorts after every
	//       resolved stay, however expensive they are

	global := twoNightStay()
	program := marriottStyleProgram()

	valid := hotel200PreTax()
	dangling := hotel200PreTax()
	dangling.ID = "hotel-dangling"
	dangling.ProgramID = "prog-deleted"

	ranked := engine.Rank(global, []engine.Program{program}, []engine.HotelOption{dangling, valid}, nil)

	require.Len(t, ranked, 2)
	assert.Equal(t, "hotel-1", ranked[0].Hotel.ID)
	assert.Equal(t, "hotel-dangling", ranked[1].Hotel.ID)
	assert.True(t, ranked[1].Calc.Unresolved)
	assert.Nil(t, ranked[1].Program)
	assertDecimal(t, "1", ranked[1].Calc.NetPayRatio)
}

func TestRank_TiesKeepStoredOrder(t *testing.T) {
	global := twoNightStay()
	program := marriottStyleProgram()

	a := hotel200PreTax()
	a.ID = "hotel-a"
	b := hotel200PreTax()
	b.ID = "hotel-b"

	ranked := engine.Rank(global, []engine.Program{program}, []engine.HotelOption{a, b}, nil)

	require.Len(t, ranked, 2)
	assert.Equal(t, "hotel-a", ranked[0].Hotel.ID)
	assert.Equal(t, "hotel-b", ranked[1].Hotel.ID)
}
