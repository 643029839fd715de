package catalog

type Registry interface {
	Register(id, promptPath, expectedQueryPath string, mandatory []string, hint string) (Exercise, error)
	Get(id string) (Exercise, error)
	Exercises() []Exercise
	Index(id string) int
	Len() int
}
