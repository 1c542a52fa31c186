package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager_GetDefault(t *testing.T) {
	m := NewManager()

	dialog := m.Get(100)
	assert.Equal(t, KindNone, dialog.Kind)
}

func TestManager_SetOverwrites(t *testing.T) {
	m := NewManager()

	m.Set(100, Dialog{Kind: KindChoosingCategory})
	m.Set(100, Dialog{Kind: KindEnteringRequestBody, CategoryID: 5})

	dialog := m.Get(100)
	assert.Equal(t, KindEnteringRequestBody, dialog.Kind)
	assert.Equal(t, int64(5), dialog.CategoryID)
}

func TestManager_SetNoneDeletes(t *testing.T) {
	m := NewManager()

	m.Set(100, Dialog{Kind: KindConfirmingRequest, Draft: "текст"})
	m.Set(100, Dialog{})

	dialog := m.Get(100)
	assert.Equal(t, KindNone, dialog.Kind)
	assert.Empty(t, dialog.Draft)
}

func TestManager_Clear(t *testing.T) {
	m := NewManager()

	m.Set(100, Dialog{Kind: KindDraftingAnswer, RequestID: 7})
	m.Set(200, Dialog{Kind: KindChoosingCategory})
	m.Clear(100)

	assert.Equal(t, KindNone, m.Get(100).Kind)
	assert.Equal(t, KindChoosingCategory, m.Get(200).Kind)
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			m.Set(id, Dialog{Kind: KindChoosingCategory})
			m.Get(id)
			m.Clear(id)
		}(int64(i))
	}
	wg.Wait()

	for i := int64(0); i < 50; i++ {
		assert.Equal(t, KindNone, m.Get(i).Kind)
	}
}
