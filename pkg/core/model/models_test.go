package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPool_Admits(t *testing.T) {
	leader := &Person{ID: "l", IsLeader: true}
	camper := &Person{ID: "c"}

	assert.True(t, PoolTrail.Admits(leader))
	assert.True(t, PoolMorning.Admits(leader))
	assert.False(t, PoolAfternoon.Admits(leader))

	assert.False(t, PoolTrail.Admits(camper))
	assert.False(t, PoolMorning.Admits(camper))
	assert.True(t, PoolAfternoon.Admits(camper))

	assert.False(t, PoolAfternoon.Admits(nil))
	assert.False(t, Pool("evening").Admits(camper))
}

func TestPool_IsValid(t *testing.T) {
	assert.True(t, PoolTrail.IsValid())
	assert.True(t, PoolMorning.IsValid())
	assert.True(t, PoolAfternoon.IsValid())
	assert.False(t, Pool("").IsValid())
	assert.False(t, Pool("evening").IsValid())
}

func TestPerson_FullName(t *testing.T) {
	assert.Equal(t, "Ana Novak", (&Person{Name: "Ana", Surname: "Novak"}).FullName())
	assert.Equal(t, "Ana", (&Person{Name: "Ana"}).FullName())
	assert.Equal(t, "ana@example.com", (&Person{Email: "ana@example.com"}).FullName())
}
