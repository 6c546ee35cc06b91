// Package authz authorizes a workload's publish request against the
// orchestrator's subject-access-review primitive.
package authz

import (
	"context"
	"fmt"

	authorizationv1 "k8s.io/api/authorization/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// Identity is the workload service-account identity a publish request is
// authorized under.
type Identity struct {
	Namespace      string
	ServiceAccount string
}

func (i Identity) userName() string {
	return fmt.Sprintf("system:serviceaccount:%s:%s", i.Namespace, i.ServiceAccount)
}

// ErrorCode classifies an authorization failure.
type ErrorCode string

const (
	ErrPermissionDenied ErrorCode = "PermissionDenied"
	ErrInternal         ErrorCode = "Internal"
)

// Error is a gate denial or review-API failure.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Gate issues subject-access-reviews via the typed client-go authorization
// clientset.
type Gate struct {
	client kubernetes.Interface
}

func New(client kubernetes.Interface) *Gate {
	return &Gate{client: client}
}

// SecretRef names a secret to additionally authorize a get against.
type SecretRef struct {
	Name      string
	Namespace string
}

// Authorize runs two sequential reviews: a get on the DataNode, and, if
// secretRef is non-nil, a get on the referenced secret. Both must succeed
// before a caller may proceed to build an operator.
func (g *Gate) Authorize(ctx context.Context, identity Identity, dataNodeName, dataNodeNamespace string, secretRef *SecretRef) error {
	if err := g.review(ctx, identity, "get", "kubedal.arunaengine.org", "datanodes", dataNodeName, dataNodeNamespace); err != nil {
		return err
	}
	if secretRef != nil {
		if err := g.review(ctx, identity, "get", "", "secrets", secretRef.Name, secretRef.Namespace); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gate) review(ctx context.Context, identity Identity, verb, group, resource, name, namespace string) error {
	sar := &authorizationv1.SubjectAccessReview{
		Spec: authorizationv1.SubjectAccessReviewSpec{
			User: identity.userName(),
			ResourceAttributes: &authorizationv1.ResourceAttributes{
				Namespace: namespace,
				Verb:      verb,
				Group:     group,
				Resource:  resource,
				Name:      name,
			},
		},
	}

	result, err := g.client.AuthorizationV1().SubjectAccessReviews().Create(ctx, sar, metav1.CreateOptions{})
	if err != nil {
		return &Error{Code: ErrInternal, Message: "subject access review request failed", Err: err}
	}

	if !result.Status.Allowed {
		return &Error{
			Code: ErrPermissionDenied,
			Message: fmt.Sprintf("identity %s may not %s %s/%s %q in namespace %q",
				identity.userName(), verb, group, resource, name, namespace),
		}
	}
	return nil
}
