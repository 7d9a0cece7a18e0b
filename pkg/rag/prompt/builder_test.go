package prompt

import (
	"strings"
	"testing"

	"ai-shopchat-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

var sampleProducts = []entity.Product{
	{Id: 0, Name: "RedRunner", Description: "running shoe", Category: "footwear", Price: 59.99},
	{Id: 1, Name: "BlueWalker", Description: "walking shoe", Category: "footwear", Price: 49.5},
}

func TestBuildContainsSentinelForNewSession(t *testing.T) {
	out := NewBuilder("", "red shoes", sampleProducts).Build()
	assert.Contains(t, out, NoPriorSummary)
	assert.Contains(t, out, "User query: red shoes")
}

func TestBuildContainsPriorSummary(t *testing.T) {
	out := NewBuilder("user wants shoes", "cheaper ones?", sampleProducts).Build()
	assert.Contains(t, out, "user wants shoes")
	assert.NotContains(t, out, NoPriorSummary)
}

func TestBuildProductBullets(t *testing.T) {
	out := NewBuilder("", "red shoes", sampleProducts).Build()
	assert.Contains(t, out, "- RedRunner: running shoe, category: footwear, price: 59.99")
	assert.Contains(t, out, "- BlueWalker: walking shoe, category: footwear, price: 49.5")
}

func TestBuildMarkerContract(t *testing.T) {
	out := NewBuilder("", "q", nil).Build()

	respIdx := strings.Index(out, ResponseMarker)
	sumIdx := strings.Index(out, SummaryMarker)
	assert.NotEqual(t, -1, respIdx)
	assert.NotEqual(t, -1, sumIdx)
	assert.Less(t, respIdx, sumIdx, "response marker must precede summary marker")
}

func TestBuildEmptyProductsStillReads(t *testing.T) {
	out := NewBuilder("", "anything in blue?", nil).Build()
	assert.Contains(t, out, "Here are some relevant products:\n")
	assert.Contains(t, out, "recommend related products")
}

func TestBuildIdempotent(t *testing.T) {
	a := NewBuilder("summary", "query", sampleProducts).Build()
	b := NewBuilder("summary", "query", sampleProducts).Build()
	assert.Equal(t, a, b)
}
