package aws

import (
	"github.com/photoflow/photoflow-api/internal/config"
	"github.com/photoflow/photoflow-api/internal/core/domain"
	"github.com/photoflow/photoflow-api/internal/core/port"
)

// Workers builds the worker transport and the function name of every worker
// kind. In s3 storage mode the two object deletes are served in-process and
// everything else goes to Lambda.
func Workers(clients *Clients, cfg *config.Config) (port.WorkerTransport, map[domain.WorkerKind]string) {
	names := cfg.FunctionNames()
	router := NewRouter(NewLambdaTransport(clients.Lambda))

	if cfg.Storage.Mode == config.StorageModeS3 {
		objects := NewObjectFunctions(clients.S3, cfg.Storage.PhotoBucket, cfg.Storage.ResizedBucket)
		router.Route(FunctionDeleteObject, objects).Route(FunctionDeleteThumbnail, objects)
		names[domain.WorkerDeleteObject] = FunctionDeleteObject
		names[domain.WorkerDeleteThumbnail] = FunctionDeleteThumbnail
	}

	return router, names
}
