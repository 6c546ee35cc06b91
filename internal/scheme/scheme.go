// Package scheme builds the runtime.Scheme shared by the controller manager
// and the CSI controller service's client.
package scheme

import (
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"

	kubedalv1alpha1 "github.com/arunaengine/kubedal/internal/apis/kubedal/v1alpha1"
)

// New returns a scheme registered with the core Kubernetes types and the
// kubedal v1alpha1 API group.
func New() *runtime.Scheme {
	s := runtime.NewScheme()
	utilmust(clientgoscheme.AddToScheme(s))
	utilmust(kubedalv1alpha1.AddToScheme(s))
	return s
}

func utilmust(err error) {
	if err != nil {
		panic(err)
	}
}
