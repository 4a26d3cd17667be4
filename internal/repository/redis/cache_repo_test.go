package redis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/repository/redis/converter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildItemCacheKeys(t *testing.T) {
	assert.Equal(t, []string{"item:a", "item:b"}, buildItemCacheKeys([]string{"a", "b"}))
}

func TestRedisValueToBytes(t *testing.T) {
	data, err := redisValueToBytes("x", "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)

	data, err = redisValueToBytes(nil, "k")
	require.NoError(t, err)
	assert.Nil(t, data)

	_, err = redisValueToBytes(42, "k")
	assert.Error(t, err)
}

func TestItemConverter_SurvivesJSON(t *testing.T) {
	conv := converter.ItemConverterImpl{}
	sale := int64(9000)
	item := domain.NewItem("i-1", "운동화", "nike", domain.NewPricePolicy(10000, &sale, 0.3),
		[]domain.ItemOption{{Name: "size", Value: "260", StockQuantity: 2}},
		[]string{"https://img/1.jpg"}, "shoes", "sup-1", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	data, err := json.Marshal(conv.ToRedisModel(item))
	require.NoError(t, err)

	var model converter.ItemRedisModel
	require.NoError(t, json.Unmarshal(data, &model))

	assert.Equal(t, item, conv.ToEntity(&model))
}
