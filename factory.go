package queue

import "github.com/DoNewsCode/core/di"

// BrokerFactory is a factory for *Broker. It doesn't contain the
// construction logic itself, only the memoized di.Factory that runs it
// once per name.
//
//	factory := di.NewFactory(func(name string) (di.Pair, error) {
//		broker := queue.NewBroker(queue.NewRedisStore(client), queue.BrokerConfig{Name: name})
//		return di.Pair{Conn: broker}, nil
//	})
//	brokerFactory := BrokerFactory{Factory: factory}
type BrokerFactory struct {
	*di.Factory
}

// Make returns a *Broker by the given name, constructing and memoizing it
// on first use.
func (s BrokerFactory) Make(name string) (*Broker, error) {
	client, err := s.Factory.Make(name)
	if err != nil {
		return nil, err
	}
	return client.(*Broker), nil
}

// BrokerMaker is the key of *BrokerFactory in the dependencies graph.
// Used as a type hint for injection.
type BrokerMaker interface {
	Make(string) (*Broker, error)
}
