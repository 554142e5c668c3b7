package seed

import (
	"testing"

	"github.com/stretchr/testify/require"

	appModels "github.com/yigit/examalloc/internal/app/models"
)

func TestDemoRoster(t *testing.T) {
	users := DemoRoster(4, 3)
	require.Len(t, users, 7)

	emails := map[string]bool{}
	examiners, students := 0, 0
	for _, u := range users {
		require.False(t, emails[u.Email], "duplicate email %s", u.Email)
		emails[u.Email] = true

		switch u.Role {
		case appModels.RoleInstructor:
			examiners++
			require.Empty(t, u.Identifier)
		case appModels.RoleStudent:
			students++
			require.Len(t, u.Identifier, 8)
			require.Zero(t, u.Capacity)
		}
	}
	require.Equal(t, 4, examiners)
	require.Equal(t, 3, students)
	require.Equal(t, 5, users[2].Capacity)
	require.Zero(t, users[0].Capacity)
}
