package app

import "context"

// HomeView is static.
type HomeView struct{}

func (*HomeView) Enter(context.Context) func(context.Context) { return nil }
func (*HomeView) Exit()                                      {}

func (*HomeView) Headline() string {
	return "The Right Meeting Changes Everything"
}

func (*HomeView) Lead() string {
	return "2,500 decision-makers, $18T in assets, and explainable recommendations for transaction-ready intros."
}

type NotFoundView struct{}

func (*NotFoundView) Enter(context.Context) func(context.Context) { return nil }
func (*NotFoundView) Exit()                                      {}
