package readview

import "golang.org/x/net/html"

// Document-order traversal primitives. These are the single place where tree
// mutation interacts with iteration: every helper continues from a
// well-defined following (or previous) node after a removal or replacement.

// skipDescendants returns the following node in document order without
// descending into the current node's children.
func skipDescendants(n *html.Node) *html.Node {
	for n != nil {
		if n.NextSibling != nil {
			return n.NextSibling
		}
		n = n.Parent
	}
	return nil
}

// followingNode returns the next node in document order.
func followingNode(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	return skipDescendants(n)
}

// previousNode mirrors followingNode in reverse document order.
func previousNode(n *html.Node) *html.Node {
	if n.PrevSibling != nil {
		prev := n.PrevSibling
		for prev.LastChild != nil {
			prev = prev.LastChild
		}
		return prev
	}
	return n.Parent
}

// lastNode returns the last descendant of root in document order, or root
// itself if it has no children.
func lastNode(root *html.Node) *html.Node {
	n := root
	for n.LastChild != nil {
		n = n.LastChild
	}
	return n
}

func removeAndGetFollowing(n *html.Node) *html.Node {
	following := skipDescendants(n)
	unlink(n)
	return following
}

func removeAndGetPrevious(n *html.Node) *html.Node {
	previous := previousNode(n)
	unlink(n)
	return previous
}

// removeDescendantsIf unlinks every descendant of root matching the
// condition, continuing each time from the removed node's skip-descendants.
// The check may have side effects as long as it only changes the node itself.
func removeDescendantsIf(root *html.Node, check func(*html.Node) bool) {
	last := skipDescendants(root)
	curr := followingNode(root)
	for curr != last {
		if check(curr) {
			curr = removeAndGetFollowing(curr)
		} else {
			curr = followingNode(curr)
		}
	}
}

// bwRemoveDescendantsIf is like removeDescendantsIf but traverses the tree
// backwards, so children are cleaned before their parents are re-evaluated.
func bwRemoveDescendantsIf(root *html.Node, check func(*html.Node) bool) {
	curr := lastNode(root)
	for curr != root {
		if check(curr) {
			curr = removeAndGetPrevious(curr)
		} else {
			curr = previousNode(curr)
		}
	}
}

// forallDescendants reports whether the condition holds on every descendant
// of root, short-circuiting on the first failure.
func forallDescendants(root *html.Node, check func(*html.Node) bool) bool {
	last := skipDescendants(root)
	for curr := followingNode(root); curr != last; curr = followingNode(curr) {
		if !check(curr) {
			return false
		}
	}
	return true
}

// hasSuchDescendant reports whether root has a descendant verifying the
// condition.
func hasSuchDescendant(root *html.Node, check func(*html.Node) bool) bool {
	last := skipDescendants(root)
	for curr := followingNode(root); curr != last; curr = followingNode(curr) {
		if check(curr) {
			return true
		}
	}
	return false
}

// changeDescendants runs a replacement function on all descendants of root.
// The function must return the node now occupying the position, so that the
// traversal can continue from it; a replaced node is visited exactly once.
func changeDescendants(root *html.Node, replace func(*html.Node) *html.Node) {
	last := skipDescendants(root)
	for curr := followingNode(root); curr != last; {
		curr = followingNode(replace(curr))
	}
}

// totalForDescendants sums a calculation over all descendants of root.
func totalForDescendants(root *html.Node, calc func(*html.Node) float64) float64 {
	total := 0.0
	last := skipDescendants(root)
	for curr := followingNode(root); curr != last; curr = followingNode(curr) {
		total += calc(curr)
	}
	return total
}

// countSuchDescs counts the descendants of root satisfying the condition.
func countSuchDescs(root *html.Node, check func(*html.Node) bool) int {
	count := 0
	last := skipDescendants(root)
	for curr := followingNode(root); curr != last; curr = followingNode(curr) {
		if check(curr) {
			count++
		}
	}
	return count
}

func firstDescendantWithTag(root *html.Node, tags ...string) *html.Node {
	last := skipDescendants(root)
	for curr := followingNode(root); curr != last; curr = followingNode(curr) {
		if nodeHasTag(curr, tags...) {
			return curr
		}
	}
	return nil
}

func tagCount(root *html.Node, tag string) int {
	return countSuchDescs(root, func(n *html.Node) bool {
		return nodeHasTag(n, tag)
	})
}

// nextElement finds the next element sibling, ignoring whitespace in
// between. Returns nil if a nonempty text node is found first, or if there
// are no more element siblings.
func nextElement(n *html.Node) *html.Node {
	for next := n.NextSibling; next != nil; next = next.NextSibling {
		if next.Type == html.ElementNode {
			return next
		}
		if textContentLength(next) > 0 {
			return nil
		}
	}
	return nil
}

// prevElement mirrors nextElement in the other direction.
func prevElement(n *html.Node) *html.Node {
	for prev := n.PrevSibling; prev != nil; prev = prev.PrevSibling {
		if prev.Type == html.ElementNode {
			return prev
		}
		if textContentLength(prev) > 0 {
			return nil
		}
	}
	return nil
}
