package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Token     string        `env:"TOKEN,required,notEmpty" mask:"true"`
	AllowList []int64       `env:"ALLOW" envSeparator:","`
	Offset    int           `env:"OFFSET" envDefault:"3"`
	Timeout   time.Duration `env:"TIMEOUT"`
	Debug     bool          `env:"DEBUG"`
	Skipped   string
	hidden    string `env:"HIDDEN"`
}

func TestMarshalEnv(t *testing.T) {
	c := &sample{
		Token:     "123:abc",
		AllowList: []int64{1, 22},
		Offset:    3,
		Timeout:   10 * time.Second,
		Skipped:   "x",
		hidden:    "y",
	}

	out, err := MarshalEnv(c, false)
	require.NoError(t, err)
	assert.Equal(t, "TOKEN=123:abc\nALLOW=1,22\nOFFSET=3\nTIMEOUT=10s\n", out)
}

func TestMarshalEnv_Masked(t *testing.T) {
	out, err := MarshalEnv(&sample{Token: "secret", Debug: true}, true)
	require.NoError(t, err)
	assert.Equal(t, "TOKEN=********\nDEBUG=true\n", out)
}

func TestMarshalEnv_Empty(t *testing.T) {
	out, err := MarshalEnv(&sample{}, false)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMarshalEnv_RejectsNonPointer(t *testing.T) {
	_, err := MarshalEnv(sample{}, false)
	assert.Error(t, err)
}
