package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathFor(t *testing.T) {
	assert.Equal(t, "/frontend/", PathFor("/frontend", ViewHome, nil))
	assert.Equal(t, "/frontend/account/login", PathFor("/frontend/", ViewLogin, nil))
	assert.Equal(t, "/frontend/polls", PathFor("/frontend", ViewPollsList, nil))
	assert.Equal(t, "/frontend/polls/42/results", PathFor("/frontend", ViewPollResults, map[string]string{"id": "42"}))
	assert.Equal(t, "/", PathFor("", "Missing", nil))
}
