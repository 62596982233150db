package listactivities

type Config struct{}

func LoadConfig() *Config {
	return &Config{}
}
