package cmd

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vzahanych/weather-bot-app/internal/service/accuweathertest"
)

func setupProvider(t *testing.T) *accuweathertest.Server {
	t.Helper()

	fake := accuweathertest.New(t)
	fake.AddCity("Москва", "294021")
	fake.AddCity("Сочи", "293687")
	fake.AddForecast("294021",
		accuweathertest.Day{Max: 20, Min: 10, Precipitation: 30, Wind: 15},
		accuweathertest.Day{Max: 21, Min: 11, Precipitation: 40, Wind: 12},
	)
	fake.AddForecast("293687", accuweathertest.Day{Max: 27, Min: 19, Precipitation: 5, Wind: 8})

	chdir(t, t.TempDir())
	t.Setenv("WBA_PROVIDER_BASE_URL", fake.URL)
	t.Setenv("WBA_PROVIDER_API_KEY", accuweathertest.DefaultAPIKey)
	t.Setenv("WBA_LOGGING_LEVEL", "error")

	return fake
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestForecastCommand(t *testing.T) {
	fake := setupProvider(t)

	out, _, err := runCLI(t, "forecast", "--days", "1", "Москва,", "Сочи")
	require.NoError(t, err)

	assert.Equal(t,
		"Погода в городе Москва на 1 дней вперёд:\n\n"+
			"День: 1\nТемпература от 10.0 °C до 20.0 °C.\nВероятность осадков: 30 %.\nСкорость ветра: 15.0.\n\n"+
			"Погода в городе Сочи на 1 дней вперёд:\n\n"+
			"День: 1\nТемпература от 19.0 °C до 27.0 °C.\nВероятность осадков: 5 %.\nСкорость ветра: 8.0.\n\n",
		out)
	assert.Equal(t, []string{"search:Москва", "forecast:294021", "search:Сочи", "forecast:293687"}, fake.Requests())
}

func TestForecastCommandUnknownCity(t *testing.T) {
	setupProvider(t)

	out, errOut, err := runCLI(t, "forecast", "Атлантида")
	require.Error(t, err)

	assert.Empty(t, out)
	assert.Contains(t, errOut, "Город 'Атлантида' не найден")
}

func TestFailedCommandStillShutsDown(t *testing.T) {
	setupProvider(t)

	_, _, err := runCLI(t, "forecast", "Атлантида")
	require.Error(t, err)

	assert.Nil(t, log)
	assert.Nil(t, tele)
}

func TestForecastCommandRejectsDays(t *testing.T) {
	fake := setupProvider(t)

	_, _, err := runCLI(t, "forecast", "--days", "9", "Москва")
	assert.Error(t, err)
	assert.Empty(t, fake.Requests())
}

func TestForecastCommandNeedsAPIKey(t *testing.T) {
	fake := setupProvider(t)
	t.Setenv("WBA_PROVIDER_API_KEY", "")

	_, _, err := runCLI(t, "forecast", "Москва")
	assert.Error(t, err)
	assert.Empty(t, fake.Requests())
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory %s: %v", prev, err)
		}
	})
}
