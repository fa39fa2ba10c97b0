package container

import (
	"fmt"
	"net/http"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jaevor/go-nanoid"
	"github.com/samber/do"
	"github.com/serroba/linkgate/internal/analytics"
	analyticsstore "github.com/serroba/linkgate/internal/analytics/store"
	"github.com/serroba/linkgate/internal/edge"
	"github.com/serroba/linkgate/internal/enrich"
	"github.com/serroba/linkgate/internal/health"
	"github.com/serroba/linkgate/internal/links"
	"github.com/serroba/linkgate/internal/messaging"
	"github.com/serroba/linkgate/internal/middleware"
	"github.com/serroba/linkgate/internal/ratelimit"
	"github.com/serroba/linkgate/internal/resolution"
	"github.com/serroba/linkgate/internal/resolver"
	"github.com/serroba/linkgate/internal/store"
	"go.uber.org/zap"
)

const clickIDLength = 21

// RepositoryPackage provides the link repository: PostgreSQL behind a Redis
// cache when both are configured, otherwise the first available of
// PostgreSQL, Redis and memory.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*store.MemoryStore, error) {
		return store.NewMemoryStore(), nil
	})

	do.Provide(i, func(i *do.Injector) (links.Repository, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		rdb := do.MustInvoke[*Redis](i)
		pg := do.MustInvoke[*Postgres](i)

		switch {
		case pg.Pool != nil && rdb.Client != nil:
			logger.Info("link repository: postgres with redis cache")

			return store.NewRedisCacheRepository(
				store.NewPostgresStore(pg.Pool), rdb.Client, seconds(opts.CacheTTLSeconds), logger,
			), nil
		case pg.Pool != nil:
			logger.Info("link repository: postgres")

			return store.NewPostgresStore(pg.Pool), nil
		case rdb.Client != nil:
			logger.Info("link repository: redis")

			return store.NewRedisStore(rdb.Client), nil
		default:
			logger.Info("link repository: memory")

			return do.MustInvoke[*store.MemoryStore](i), nil
		}
	})
}

// ClickStorePackage provides where consumed click events are recorded.
func ClickStorePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (analytics.Store, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		rdb := do.MustInvoke[*Redis](i)
		pg := do.MustInvoke[*Postgres](i)

		if pg.Pool != nil {
			return store.NewPostgresClickStore(pg.Pool), nil
		}

		if rdb.Client != nil {
			return store.NewRedisStore(rdb.Client), nil
		}

		// In-process deployments count clicks on the memory repository.
		if mem, err := do.Invoke[*store.MemoryStore](i); err == nil {
			return mem, nil
		}

		return analyticsstore.NewNoop(logger), nil
	})
}

// MessagingPackage provides the click event transport: Redis streams when
// Redis is configured, an in-process channel otherwise.
func MessagingPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*gochannel.GoChannel, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, messaging.NewZapLogger(logger)), nil
	})

	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		rdb := do.MustInvoke[*Redis](i)

		if rdb.Client == nil {
			return messaging.NewPublisherGroup(do.MustInvoke[*gochannel.GoChannel](i)), nil
		}

		pub, err := messaging.NewRedisPublisher(rdb.Client, logger)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(pub), nil
	})
}

// ConsumerGroupPackage provides the consumer group recording click events.
// It depends on ClickStorePackage and MessagingPackage.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		rdb := do.MustInvoke[*Redis](i)
		clicks := do.MustInvoke[analytics.Store](i)

		var sub message.Subscriber

		if rdb.Client == nil {
			sub = do.MustInvoke[*gochannel.GoChannel](i)
		} else {
			s, err := messaging.NewRedisSubscriber(rdb.Client, opts.ConsumerGroup, logger)
			if err != nil {
				return nil, err
			}

			sub = s
		}

		group := messaging.NewConsumerGroup(sub, logger)
		group.Add(messaging.NewConsumer(sub, analytics.TopicLinkClicked, analytics.HandleClick(clicks), logger))

		return group, nil
	})
}

// RateLimitPackage provides the resolver endpoint rate limiter.
func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (ratelimit.Limiter, error) {
		opts := do.MustInvoke[*Options](i)
		rdb := do.MustInvoke[*Redis](i)

		var backing ratelimit.Store = store.NewRateLimitMemoryStore()
		if rdb.Client != nil {
			backing = store.NewRateLimitRedisStore(rdb.Client)
		}

		return ratelimit.NewSlidingWindowLimiter(backing, int64(opts.RateLimit), seconds(opts.RateWindowSeconds)), nil
	})
}

// ResolverPackage provides the resolver service behind /api/s.
func ResolverPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*resolver.Service, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		repo := do.MustInvoke[links.Repository](i)
		publishers := do.MustInvoke[*messaging.PublisherGroup](i)

		newID, err := nanoid.Standard(clickIDLength)
		if err != nil {
			return nil, fmt.Errorf("failed to create click id generator: %w", err)
		}

		publish := messaging.NewPublishFunc[analytics.ClickEvent](publishers.Publisher(), analytics.TopicLinkClicked)

		return resolver.NewService(repo, publish, newID, logger), nil
	})
}

// EdgePackage provides the short-link gateway and its collaborators.
func EdgePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (enrich.IPResolver, error) {
		opts := do.MustInvoke[*Options](i)

		return enrich.NewIPResolver(opts.PlatformIPHeader, opts.PeerClientIP), nil
	})

	do.Provide(i, func(i *do.Injector) (*edge.Gateway, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		ips := do.MustInvoke[enrich.IPResolver](i)

		var locator enrich.Locator = enrich.NoopLocator{}
		if opts.GeoURL != "" {
			locator = enrich.NewHTTPLocator(opts.GeoURL, millis(opts.GeoTimeoutMs))
		}

		routes := append(append([]string{}, edge.DefaultSystemRoutes...), opts.ExtraSystemRoutes()...)

		return edge.NewGateway(
			edge.NewClassifier(routes),
			enrich.NewEnricher(ips, locator, logger),
			resolution.NewClient(opts.ResolverBaseURL(), millis(opts.ResolveTimeoutMs), logger),
			edge.NewRedirectMap(),
			logger,
		), nil
	})
}

// HTTPPackage provides the router, the API with its routes registered, and
// the root handler with the gateway in front of the router.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)
		rdb := do.MustInvoke[*Redis](i)
		pg := do.MustInvoke[*Postgres](i)
		opts := do.MustInvoke[*Options](i)

		api := humachi.New(router, huma.DefaultConfig("linkgate", "1.0.0"))

		// The resolver endpoint reads forwarded headers only, never the peer:
		// for a trusted edge the peer is the edge itself.
		rateLimit := middleware.RateLimiter(
			api,
			do.MustInvoke[ratelimit.Limiter](i),
			enrich.NewIPResolver(opts.PlatformIPHeader, false),
			middleware.NewTrustedPeers(opts.TrustedProxyIPs()),
			logger,
		)
		resolver.RegisterRoutes(api, resolver.NewHandler(do.MustInvoke[*resolver.Service](i)), rateLimit)

		var redisCheck, postgresCheck health.Checker
		if rdb.Client != nil {
			redisCheck = health.NewRedisChecker(rdb.Client)
		}

		if pg.Pool != nil {
			postgresCheck = health.NewPostgresChecker(pg.Pool)
		}

		health.RegisterRoutes(api, health.NewHandler(redisCheck, postgresCheck))

		return api, nil
	})

	do.Provide(i, func(i *do.Injector) (http.Handler, error) {
		router := do.MustInvoke[*chi.Mux](i)
		gateway := do.MustInvoke[*edge.Gateway](i)
		logger := do.MustInvoke[*zap.Logger](i)

		// Invoke API to trigger route registration
		_ = do.MustInvoke[huma.API](i)

		return middleware.AccessLog(logger)(gateway.Middleware(router)), nil
	})
}
