package queue

import (
	"github.com/DoNewsCode/core/contract"
	"github.com/go-kit/kit/log"
)

// providersOption configures how Providers constructs the backing Store
// for each broker.
type providersOption struct {
	store            Store
	storeConstructor func(args StoreConstructorArgs) (Store, error)
}

// ProvidersOptionFunc changes how Providers wires the broker factory.
type ProvidersOptionFunc func(options *providersOption)

// WithStore instructs Providers to accept a Store different from the
// default Redis-backed one. Supersedes WithStoreConstructor.
func WithStore(store Store) ProvidersOptionFunc {
	return func(options *providersOption) {
		options.store = store
	}
}

// WithStoreConstructor instructs Providers to build the Store with f
// instead of the default Redis-backed constructor. No-op if WithStore is
// also given.
func WithStoreConstructor(f func(args StoreConstructorArgs) (Store, error)) ProvidersOptionFunc {
	return func(options *providersOption) {
		options.storeConstructor = f
	}
}

// StoreConstructorArgs are the arguments passed to a store constructor.
// See WithStoreConstructor.
type StoreConstructorArgs struct {
	Name      string
	Conf      BrokerConfig
	Logger    log.Logger
	AppName   contract.AppName
	Env       contract.Env
	Populator contract.DIPopulator
}
