// Package apportion distributes 100 discrete cells across the categories of a
// frequency table using the largest-remainder (Hamilton) method: every
// category receives the floor of its exact percentage share, then the leftover
// cells go to the categories with the largest fractional remainders.
package apportion
