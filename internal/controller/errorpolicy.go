package controller

import (
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// errorPolicyRequeue is the fixed requeue applied whenever a
// reconciliation returns an error.
const errorPolicyRequeue = 5 * time.Minute

// ApplyErrorPolicy centralizes the error policy: log, record a Warning
// event naming the formatted error chain, and requeue after 5 minutes. The
// reconciler never propagates the error to the watch machinery.
func ApplyErrorPolicy(recorder record.EventRecorder, obj client.Object, reason string, err error) ctrl.Result {
	log.Log.Error(err, "reconciliation failed, applying error policy", "reason", reason)
	recorder.Eventf(obj, corev1.EventTypeWarning, reason, "%v", err)
	return ctrl.Result{RequeueAfter: errorPolicyRequeue}
}
